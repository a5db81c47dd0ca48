package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"1024B", 1024, false},
		{"1Ki", KiB, false},
		{"1KiB", KiB, false},
		{"16Mi", 16 * MiB, false},
		{"16MiB", 16 * MiB, false},
		{"16 MiB", 16 * MiB, false},
		{"1GiB", GiB, false},
		{"1KB", KB, false},
		{"100MB", 100 * MB, false},
		{"1.5KiB", 1536, false},
		{"", 0, true},
		{"lots", 0, true},
		{"12XB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("2MiB")))
	assert.Equal(t, 2*MiB, b)

	assert.Error(t, b.UnmarshalText([]byte("two megs")))
	assert.Equal(t, 2*MiB, b, "failed unmarshal must not modify the value")
}

func TestStringRoundTrip(t *testing.T) {
	for _, v := range []ByteSize{512, KiB, 16 * MiB, 3 * GiB} {
		text, err := v.MarshalText()
		require.NoError(t, err)

		var back ByteSize
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, v, back, "round trip of %s", text)
	}
}

func TestConversions(t *testing.T) {
	assert.Equal(t, uint64(1024), KiB.Uint64())
	assert.Equal(t, int64(1048576), MiB.Int64())
}
