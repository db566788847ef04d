// Package config loads the service configuration. Values come from struct tag
// defaults, then an optional TOML file, then environment variables, and are
// validated together so every problem is reported at once.
package config

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Sheet    SheetConfig    `toml:"sheet"`
	Store    StoreConfig    `toml:"store"`
	Security SecurityConfig `toml:"security"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to; empty binds all interfaces.
	Host string `toml:"host" env:"HOST"`

	Port int `toml:"port" env:"PORT" default:"3001"`

	ReadTimeout     time.Duration `toml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `toml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes" env:"SERVER_MAX_BODY_BYTES" default:"1048576"`
}

// SheetConfig names the tab exposed as records.
type SheetConfig struct {
	SpreadsheetID string `toml:"spreadsheet_id" env:"GOOGLE_SHEETS_ID"`
	Name          string `toml:"name" env:"GOOGLE_SHEET_NAME" default:"Visão geral"`

	// DeletePolicy is "clear" (blank the row) or "remove" (delete the row).
	DeletePolicy string `toml:"delete_policy" env:"DELETE_POLICY" default:"clear"`
}

// StoreConfig selects and configures the tabular store backend.
type StoreConfig struct {
	// Backend is one of sheets, xlsx or memory.
	Backend string        `toml:"backend" env:"STORE_BACKEND" default:"sheets"`
	Timeout time.Duration `toml:"timeout" env:"STORE_TIMEOUT" default:"10s"`

	CredentialsFile string `toml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	TokenFile       string `toml:"token_file" env:"TOKEN_FILE" default:".token.json"`
	APIKey          string `toml:"api_key" env:"GOOGLE_SHEETS_API_KEY"`

	XLSXPath string `toml:"xlsx_path" env:"XLSX_PATH" default:"dados.xlsx"`
}

// SecurityConfig holds access settings for the HTTP API.
type SecurityConfig struct {
	// APIKeys, when non-empty, are required on every record endpoint.
	APIKeys     []string `toml:"api_keys" env:"API_KEYS"`
	CORSOrigins []string `toml:"cors_origins" env:"CORS_ORIGINS" default:"*"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL" default:"info"`
	Format string `toml:"format" env:"LOG_FORMAT" default:"text"`
}

// Apply configures the global logger. verbose forces debug level.
func (c LoggingConfig) Apply(verbose bool) {
	if strings.EqualFold(c.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	}
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// String returns a representation safe for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Sheet: {SpreadsheetID: %q, Name: %q, DeletePolicy: %q}, ",
		c.Sheet.SpreadsheetID, c.Sheet.Name, c.Sheet.DeletePolicy)
	fmt.Fprintf(&b, "Store: {Backend: %q, Timeout: %s, CredentialsFile: %q, TokenFile: %q, APIKey: %s}, ",
		c.Store.Backend, c.Store.Timeout, c.Store.CredentialsFile, c.Store.TokenFile, mask(c.Store.APIKey))
	fmt.Fprintf(&b, "Security: {APIKeys: %d configured, CORSOrigins: %v}, ",
		len(c.Security.APIKeys), c.Security.CORSOrigins)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return `""`
	}
	return "[MASKED]"
}
