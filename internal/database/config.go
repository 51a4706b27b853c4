package database

import "time"

// Config holds all settings needed to connect to and pool the catalog database.
type Config struct {
	// DSN is a go-sql-driver/mysql data source name. The database named in
	// the DSN is the one whose tables are introspected.
	// Example: "user:pass@tcp(localhost:3306)/app"
	DSN string `yaml:"dsn"`

	// Pool tuning
	MaxConns        int32         `yaml:"max_conns"`          // maximum number of open connections
	MinConns        int32         `yaml:"min_conns"`          // idle connections kept alive
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`  // maximum time a connection may be reused
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"` // maximum time a connection may sit idle

	// Timeouts
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // time limit for the initial ping
	QueryTimeout   time.Duration `yaml:"query_timeout"`   // per catalog query deadline, 0 disables
}

// DefaultConfig returns settings suited to a short-lived generator run:
// one connection per concurrently inspected table is plenty.
func DefaultConfig(dsn string) *Config {
	return &Config{
		DSN:             dsn,
		MaxConns:        8,
		MinConns:        2,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}
