// Package jwt provides JWT configuration options for the auth surface.
//
// Configuration Example (YAML):
//
//	jwt:
//	  key: "your-secret-key-min-32-chars-long"
//	  expired: "24h"
//	  issuer: "agentic"
//
// The signing key can also come from the JWT_KEY environment variable.
package jwt

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	// DefaultExpired is the default token expiration time.
	DefaultExpired = 24 * time.Hour

	// DefaultIssuer is the default token issuer.
	DefaultIssuer = "agentic"

	// MinKeyLength is the minimum required key length.
	MinKeyLength = 32
)

// Options contains JWT configuration.
type Options struct {
	// Key is the HMAC secret used to sign tokens.
	// Minimum length: 32 characters.
	Key string `json:"-" mapstructure:"key"`

	// Expired is the token expiration duration.
	// Default: 24h
	Expired time.Duration `json:"expired" mapstructure:"expired"`

	// Issuer is the token issuer (iss claim).
	// Default: agentic
	Issuer string `json:"issuer" mapstructure:"issuer"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Expired: DefaultExpired,
		Issuer:  DefaultIssuer,
	}
}

// Validate validates the JWT options.
func (o *Options) Validate() error {
	if o.Key == "" {
		o.Key = os.Getenv("JWT_KEY")
	}
	if o.Key == "" {
		return fmt.Errorf("jwt key is required")
	}
	if len(o.Key) < MinKeyLength {
		return fmt.Errorf("jwt key must be at least %d characters, got: %d", MinKeyLength, len(o.Key))
	}
	if o.Expired <= 0 {
		return fmt.Errorf("expired must be positive, got: %v", o.Expired)
	}
	return nil
}

// Complete fills in default values for unset fields.
func (o *Options) Complete() error {
	if o.Expired == 0 {
		o.Expired = DefaultExpired
	}
	if o.Issuer == "" {
		o.Issuer = DefaultIssuer
	}
	return nil
}

// AddFlags adds flags for JWT options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Key, "jwt.key", o.Key,
		"JWT signing key (min 32 chars, prefer the JWT_KEY env var)")
	fs.DurationVar(&o.Expired, "jwt.expired", o.Expired,
		"JWT token expiration duration")
	fs.StringVar(&o.Issuer, "jwt.issuer", o.Issuer,
		"JWT token issuer (iss claim)")
}
