package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// BaseConfig is the full application configuration. It is loaded once at
// startup and passed down.
type BaseConfig struct {
	App         App         `koanf:"app" json:"app"`
	Server      Server      `koanf:"server" json:"server"`
	Auth        Auth        `koanf:"auth" json:"auth"`
	Persistence Persistence `koanf:"persistence" json:"persistence"`
	Mongo       Mongo       `koanf:"mongo" json:"mongo"`
	Cache       Cache       `koanf:"cache" json:"cache"`
	Mail        Mail        `koanf:"mail" json:"mail"`
}

type App struct {
	Name string `koanf:"name" json:"name"`
	Env  string `koanf:"env" json:"env"`
}

type Server struct {
	Address                   string `koanf:"address" json:"address"`
	APIPrefix                 string `koanf:"api_prefix" json:"api_prefix"`
	ShutdownTimeoutExpression string `koanf:"shutdown_timeout" json:"shutdown_timeout"`
	BodyLimit                 int    `koanf:"body_limit" json:"body_limit"`
}

type Persistence struct {
	Driver                string `koanf:"driver" json:"driver"`
	DSN                   string `koanf:"dsn" json:"dsn"`
	Debug                 bool   `koanf:"debug" json:"debug"`
	PingTimeoutExpression string `koanf:"ping_timeout" json:"ping_timeout"`
}

type Mongo struct {
	Enabled    bool   `koanf:"enabled" json:"enabled"`
	URI        string `koanf:"uri" json:"uri"`
	Database   string `koanf:"database" json:"database"`
	Collection string `koanf:"collection" json:"collection"`
}

type Cache struct {
	Enabled  bool   `koanf:"enabled" json:"enabled"`
	Address  string `koanf:"address" json:"address"`
	Password string `koanf:"password" json:"-"`
	DB       int    `koanf:"db" json:"db"`
	Prefix   string `koanf:"prefix" json:"prefix"`
}

type Mail struct {
	Driver                string `koanf:"driver" json:"driver"`
	Host                  string `koanf:"host" json:"host"`
	Port                  int    `koanf:"port" json:"port"`
	Username              string `koanf:"username" json:"username"`
	Password              string `koanf:"password" json:"-"`
	From                  string `koanf:"from" json:"from"`
	SendTimeoutExpression string `koanf:"send_timeout" json:"send_timeout"`
}

func (c *BaseConfig) GetApp() App                 { return c.App }
func (c *BaseConfig) GetServer() Server           { return c.Server }
func (c *BaseConfig) GetAuth() *Auth              { return &c.Auth }
func (c *BaseConfig) GetPersistence() Persistence { return c.Persistence }
func (c *BaseConfig) GetMongo() Mongo             { return c.Mongo }
func (c *BaseConfig) GetCache() Cache             { return c.Cache }
func (c *BaseConfig) GetMail() Mail               { return c.Mail }

// Validate rejects configurations the service cannot start with.
func (c BaseConfig) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	driver := strings.ToLower(c.Persistence.Driver)
	if driver != "" && driver != DriverSQLite && driver != DriverPostgres {
		return fmt.Errorf("persistence: unsupported driver %q", c.Persistence.Driver)
	}

	if c.Mongo.Enabled && (c.Mongo.URI == "" || c.Mongo.Database == "") {
		return errors.New("mongo: uri and database are required when enabled")
	}

	if strings.EqualFold(c.Mail.Driver, MailDriverSMTP) && c.Mail.Host == "" {
		return errors.New("mail: smtp driver requires a host")
	}

	return nil
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"
)

func (s Server) GetAddress() string {
	if s.Address == "" {
		return ":4000"
	}
	return s.Address
}

func (s Server) GetAPIPrefix() string {
	if s.APIPrefix == "" {
		return "/api/v1"
	}
	return s.APIPrefix
}

func (s Server) GetShutdownTimeout() time.Duration {
	return parseDuration(s.ShutdownTimeoutExpression, 10*time.Second)
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return DriverSQLite
	}
	return strings.ToLower(p.Driver)
}

func (p Persistence) GetDSN() string { return p.DSN }

func (p Persistence) GetPingTimeout() time.Duration {
	return parseDuration(p.PingTimeoutExpression, 5*time.Second)
}

func (m Mail) GetSendTimeout() time.Duration {
	return parseDuration(m.SendTimeoutExpression, 30*time.Second)
}

func parseDuration(expr string, def time.Duration) time.Duration {
	if expr == "" {
		return def
	}
	d, err := time.ParseDuration(expr)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// validURL is a url rule that tolerates the fragment based redirect
// targets of the storefront.
var validURL = validation.NewStringRule(func(s string) bool {
	return is.URL.Validate(s) == nil || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}, "must be a valid URL")
