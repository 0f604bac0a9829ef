package config

import (
	"context"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string  `mapstructure:"OTEL_SERVICE_NAME"`
	APIKey      string  `mapstructure:"HONEYCOMB_API_KEY"`
	Endpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Dataset     string  `mapstructure:"HONEYCOMB_DATASET"`
	SampleRatio float64 `mapstructure:"HONEYCOMB_SAMPLE_RATIO"`

	IndexFile string `mapstructure:"SEARCH_INDEX_FILE"`
	BindAddr  string `mapstructure:"SEARCH_BIND_ADDR"`
}

// CreateConfig reads configuration from the environment, loading a .env file
// first if one exists. A missing HONEYCOMB_API_KEY is not an error; it is the
// signal that trace export stays disabled.
func CreateConfig(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: "search-backend",
		SampleRatio: 1.0,
		IndexFile:   "search-index.sqlite",
		BindAddr:    ":8080",
	}

	if err := decodeEnviron(os.Environ(), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decodeEnviron(environ []string, cfg *Config) error {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, found := strings.Cut(kv, "="); found && value != "" {
			values[key] = value
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}
