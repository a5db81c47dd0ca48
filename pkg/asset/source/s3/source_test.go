package s3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"typed NoSuchKey", &types.NoSuchKey{}, true},
		{"typed NotFound", fmt.Errorf("wrapped: %w", &types.NotFound{}), true},
		{"generic 404 code", &smithy.GenericAPIError{Code: "404"}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}

func TestKeyPrefix(t *testing.T) {
	s := New(nil, Config{Bucket: "b", KeyPrefix: "images/"}, nil)
	assert.Equal(t, "images/Coal.png", s.key("Coal.png"))
}
