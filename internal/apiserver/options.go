// Package apiserver assembles the gateway that serves the dashboard API and
// the embedded widget protocol.
package apiserver

import (
	"github.com/spf13/pflag"

	dbopts "github.com/agentic-hq/agentic/pkg/options/db"
	engineopts "github.com/agentic-hq/agentic/pkg/options/engine"
	jwtopts "github.com/agentic-hq/agentic/pkg/options/jwt"
	logopts "github.com/agentic-hq/agentic/pkg/options/log"
	ratelimitopts "github.com/agentic-hq/agentic/pkg/options/ratelimit"
	redisopts "github.com/agentic-hq/agentic/pkg/options/redis"
	serveropts "github.com/agentic-hq/agentic/pkg/options/server"
)

// Options aggregates all apiserver configuration.
type Options struct {
	Log       *logopts.Options       `json:"log" mapstructure:"log"`
	Server    *serveropts.Options    `json:"server" mapstructure:"server"`
	DB        *dbopts.Options        `json:"db" mapstructure:"db"`
	Redis     *redisopts.Options     `json:"redis" mapstructure:"redis"`
	JWT       *jwtopts.Options       `json:"jwt" mapstructure:"jwt"`
	Engine    *engineopts.Options    `json:"engine" mapstructure:"engine"`
	RateLimit *ratelimitopts.Options `json:"ratelimit" mapstructure:"ratelimit"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Log:       logopts.NewOptions(),
		Server:    serveropts.NewOptions(),
		DB:        dbopts.NewOptions(),
		Redis:     redisopts.NewOptions(),
		JWT:       jwtopts.NewOptions(),
		Engine:    engineopts.NewOptions(),
		RateLimit: ratelimitopts.NewOptions(),
	}
}

// AddFlags adds all option flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.Server.AddFlags(fs)
	o.DB.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.JWT.AddFlags(fs)
	o.Engine.AddFlags(fs)
	o.RateLimit.AddFlags(fs)
}

// Validate validates all options.
func (o *Options) Validate() error {
	for _, v := range []interface{ Validate() error }{
		o.Log, o.Server, o.DB, o.Redis, o.JWT, o.Engine, o.RateLimit,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Complete fills in defaults for unset fields.
func (o *Options) Complete() error {
	if err := o.Server.Complete(); err != nil {
		return err
	}
	return o.JWT.Complete()
}
