// Package ratelimit provides configuration options for the per-token
// embed rate limiter.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration options for the embed rate limiter.
type Options struct {
	// Limit is the number of queries allowed per window per embed token.
	Limit int `json:"limit" mapstructure:"limit"`
	// Window is the sliding window length.
	Window time.Duration `json:"window" mapstructure:"window"`
}

// NewOptions creates a new Options object with default values.
// 20 queries per minute per token matches the published widget contract.
func NewOptions() *Options {
	return &Options{
		Limit:  20,
		Window: 60 * time.Second,
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.Limit <= 0 {
		return fmt.Errorf("ratelimit.limit must be positive")
	}
	if o.Window <= 0 {
		return fmt.Errorf("ratelimit.window must be positive")
	}
	return nil
}

// WindowSeconds returns the window length in whole seconds, as reported in
// rate-limit metadata.
func (o *Options) WindowSeconds() int {
	return int(o.Window / time.Second)
}

// AddFlags adds flags for rate limit options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Limit, "ratelimit.limit", o.Limit, "Queries allowed per window per embed token")
	fs.DurationVar(&o.Window, "ratelimit.window", o.Window, "Rate limit window length")
}
