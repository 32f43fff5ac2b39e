// Package engine provides configuration options for the external answer
// engine that performs retrieval and generation.
package engine

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration options for the answer engine client.
type Options struct {
	// Endpoint is the base URL of the answer engine HTTP API.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	// APIKey authenticates the gateway against the engine, if required.
	APIKey string `json:"-" mapstructure:"api-key"`
	// Timeout bounds a single query round trip.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	// TopK is the default number of source documents to retrieve.
	TopK int `json:"top-k" mapstructure:"top-k"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Endpoint: "http://127.0.0.1:9000",
		Timeout:  90 * time.Second,
		TopK:     4,
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.APIKey == "" {
		o.APIKey = os.Getenv("ENGINE_API_KEY")
	}
	if o.Endpoint == "" {
		return fmt.Errorf("engine.endpoint is required")
	}
	u, err := url.Parse(o.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("engine.endpoint is not a valid URL: %s", o.Endpoint)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("engine.timeout must be positive")
	}
	if o.TopK <= 0 {
		return fmt.Errorf("engine.top-k must be positive")
	}
	return nil
}

// AddFlags adds flags for engine options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Endpoint, "engine.endpoint", o.Endpoint, "Answer engine base URL")
	fs.StringVar(&o.APIKey, "engine.api-key", o.APIKey, "Answer engine API key (DEPRECATED: use ENGINE_API_KEY env var instead)")
	fs.DurationVar(&o.Timeout, "engine.timeout", o.Timeout, "Answer engine request timeout")
	fs.IntVar(&o.TopK, "engine.top-k", o.TopK, "Default number of source documents to retrieve")
}
