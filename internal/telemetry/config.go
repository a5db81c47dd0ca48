package telemetry

import (
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config selects where spans go and how many are kept.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is an OTLP gRPC collector address, host:port.
	Endpoint string
	Insecure bool

	// SampleRate is clamped to [0, 1]. Below 1, child spans follow their
	// parent's decision.
	SampleRate float64
}

// Disabled returns a configuration that installs the no-op tracer.
func Disabled(service string) Config {
	return Config{ServiceName: service, ServiceVersion: "dev", SampleRate: 1}
}

func (c Config) exporterOptions() []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.Endpoint)}
	if c.Insecure {
		opts = append(opts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	return opts
}

func (c Config) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRate >= 1.0:
		return sdktrace.AlwaysSample()
	case c.SampleRate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRate))
	}
}
