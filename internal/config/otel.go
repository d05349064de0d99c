package config

// Otel configures trace export. Variable names follow the OpenTelemetry SDK
// conventions so collectors can be wired the same way as other services.
type Otel struct {
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"pricetracker"`
	// Endpoint is the OTLP gRPC collector address. Empty disables export.
	Endpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool              `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	Headers     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS" envSeparator:"," envKeyValSeparator:"="`
	SampleRatio float64           `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"0.1"`

	K8sPodName   string `env:"K8S_POD_NAME"`
	K8sNamespace string `env:"K8S_NAMESPACE"`
}
