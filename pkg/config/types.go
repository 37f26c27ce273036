package config

// Config is the dispatch engine's process configuration.
type Config struct {
	Mocks   MocksConfig   `json:"mocks" yaml:"mocks"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// TracingConfig configures where completed spans are exported.
type TracingConfig struct {
	// OTLPEndpoint, when set, exports spans as OTLP/HTTP JSON to this
	// collector URL instead of discarding them.
	OTLPEndpoint string `json:"otlpEndpoint,omitempty" yaml:"otlpEndpoint,omitempty"`
	// SampleRatio is the fraction of dispatches (0.0-1.0) that get a
	// recorded "rest.dispatch" span. Zero means "unset", which is
	// treated as 1.0 (sample everything) so a bare config file keeps
	// tracing complete unless an operator opts into sampling.
	SampleRatio float64 `json:"sampleRatio,omitempty" yaml:"sampleRatio,omitempty"`
}

// MocksConfig groups mock-serving behavior toggles.
type MocksConfig struct {
	// EnableInvocationStats turns on invocation accounting (spec §4.8):
	// id extraction, span annotation, and telemetry-sink publication.
	EnableInvocationStats bool      `json:"enableInvocationStats" yaml:"enableInvocationStats"`
	REST                  RESTConfig `json:"rest" yaml:"rest"`
}

// RESTConfig groups REST-dispatch-specific behavior toggles.
type RESTConfig struct {
	EnableCorsPolicy bool       `json:"enableCorsPolicy" yaml:"enableCorsPolicy"`
	CORS             CORSConfig `json:"cors" yaml:"cors"`
}

// CORSConfig configures the CORS pre-flight handler (spec §4.10).
type CORSConfig struct {
	// AllowedOrigins is echoed verbatim as Access-Control-Allow-Origin.
	AllowedOrigins string `json:"allowedOrigins" yaml:"allowedOrigins"`
	// AllowCredentials is rendered into the (intentionally
	// non-standard) Access-Allow-Credentials header.
	AllowCredentials bool `json:"allowCredentials" yaml:"allowCredentials"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address string `json:"address" yaml:"address"`
}

// LogConfig configures structured logging (see pkg/logging).
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	// LokiURL, when set, additionally ships every log record to a Loki
	// push endpoint alongside the local text/JSON handler.
	LokiURL string `json:"lokiUrl,omitempty" yaml:"lokiUrl,omitempty"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Mocks: MocksConfig{
			EnableInvocationStats: false,
			REST: RESTConfig{
				EnableCorsPolicy: false,
				CORS: CORSConfig{
					AllowedOrigins:   "*",
					AllowCredentials: false,
				},
			},
		},
		Server: ServerConfig{Address: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}
