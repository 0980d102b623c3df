package traces

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	ErrInvalidURL       = errors.New("the OTLP push URL is invalid")
	ErrExporterCreation = errors.New("trace exporter cannot be created")
)

// NewGRPCSender exports over the binary RPC transport. TLS is not used:
// the NodePort endpoints are reached over the local machine boundary only.
func NewGRPCSender(ctx context.Context, endpoint string) (Exporter, error) {
	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)

	e, err := otlptrace.New(ctx, client)
	if err != nil {
		return Exporter{}, fmt.Errorf("%w: %v", ErrExporterCreation, err)
	}

	return NewExporter(e), nil
}

// NewHTTPSender exports over the textual HTTP transport. The push URL
// carries the /v1/traces path.
func NewHTTPSender(ctx context.Context, otlpPushURL string) (Exporter, error) {
	urlSegments, err := url.Parse(otlpPushURL)
	if err != nil {
		return Exporter{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(urlSegments.Host),
		otlptracehttp.WithURLPath(urlSegments.Path),
	}

	if urlSegments.Scheme != "https" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	client := otlptracehttp.NewClient(opts...)

	e, err := otlptrace.New(ctx, client)
	if err != nil {
		return Exporter{}, fmt.Errorf("%w: %v", ErrExporterCreation, err)
	}

	return NewExporter(e), nil
}
