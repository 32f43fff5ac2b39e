// Package db provides database configuration options.
//
// SQLite is the default and needs no external service. MySQL is selected
// with --db.driver=mysql for shared deployments.
package db

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Options defines configuration options for the database.
type Options struct {
	Driver                string        `json:"driver" mapstructure:"driver"`
	Path                  string        `json:"path" mapstructure:"path"`
	Host                  string        `json:"host" mapstructure:"host"`
	Port                  int           `json:"port" mapstructure:"port"`
	Username              string        `json:"username" mapstructure:"username"`
	Password              string        `json:"-" mapstructure:"password"`
	Database              string        `json:"database" mapstructure:"database"`
	MaxIdleConnections    int           `json:"max-idle-connections" mapstructure:"max-idle-connections"`
	MaxOpenConnections    int           `json:"max-open-connections" mapstructure:"max-open-connections"`
	MaxConnectionLifeTime time.Duration `json:"max-connection-life-time" mapstructure:"max-connection-life-time"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Driver:                DriverSQLite,
		Path:                  "agentic.db",
		Host:                  "127.0.0.1",
		Port:                  3306,
		Username:              "root",
		Database:              "agentic",
		MaxIdleConnections:    10,
		MaxOpenConnections:    100,
		MaxConnectionLifeTime: 10 * time.Second,
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	switch o.Driver {
	case DriverSQLite:
		if o.Path == "" {
			return fmt.Errorf("db.path is required for the sqlite driver")
		}
	case DriverMySQL:
		if o.Password == "" {
			o.Password = os.Getenv("MYSQL_PASSWORD")
		}
		if o.Database == "" {
			return fmt.Errorf("db.database is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unsupported db.driver: %s", o.Driver)
	}
	return nil
}

// DSN returns the driver-specific connection string.
func (o *Options) DSN() string {
	if o.Driver == DriverSQLite {
		return o.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		o.Username, o.Password, o.Host, o.Port, o.Database)
}

// AddFlags adds flags for database options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Driver, "db.driver", o.Driver, "Database driver (sqlite, mysql)")
	fs.StringVar(&o.Path, "db.path", o.Path, "SQLite database file path")
	fs.StringVar(&o.Host, "db.host", o.Host, "MySQL host")
	fs.IntVar(&o.Port, "db.port", o.Port, "MySQL port")
	fs.StringVar(&o.Username, "db.username", o.Username, "MySQL username")
	fs.StringVar(&o.Password, "db.password", o.Password, "MySQL password (DEPRECATED: use MYSQL_PASSWORD env var instead)")
	fs.StringVar(&o.Database, "db.database", o.Database, "MySQL database")
	fs.IntVar(&o.MaxIdleConnections, "db.max-idle-connections", o.MaxIdleConnections, "Max idle connections")
	fs.IntVar(&o.MaxOpenConnections, "db.max-open-connections", o.MaxOpenConnections, "Max open connections")
	fs.DurationVar(&o.MaxConnectionLifeTime, "db.max-connection-life-time", o.MaxConnectionLifeTime, "Max connection life time")
}
