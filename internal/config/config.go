package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	"github.com/johndauphine/sqldialect/internal/logging"
)

// Supported connection types.
const (
	TypePostgres = "postgres"
	TypeMSSQL    = "mssql"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// PostgreSQL driver choices.
const (
	DriverPgx = "pgx"
	DriverPq  = "pq"
)

// expandTilde expands ~ or ~/ at the start of a path to the user's home directory
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Config holds all configuration for the dialect tool
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Dialect    DialectConfig    `yaml:"dialect"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ConnectionConfig holds database connection settings
type ConnectionConfig struct {
	Type            string `yaml:"type"`   // "postgres", "mssql", "mysql" or "sqlite"
	Driver          string `yaml:"driver"` // PostgreSQL only: "pgx" (default) or "pq"
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Database        string `yaml:"database"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Schema          string `yaml:"schema"`
	Path            string `yaml:"path"`              // SQLite database file
	SSLMode         string `yaml:"ssl_mode"`          // PostgreSQL/MySQL: disable, prefer, require, verify-ca, verify-full
	TrustServerCert bool   `yaml:"trust_server_cert"` // MSSQL: trust server certificate (default: false)
	Encrypt         string `yaml:"encrypt"`           // MSSQL: disable, false, true (default: true)
	MaxConnections  int    `yaml:"max_connections"`
	// Kerberos authentication (alternative to user/password)
	Auth       string `yaml:"auth"`       // "password" (default) or "kerberos"
	Krb5Conf   string `yaml:"krb5_conf"`  // Path to krb5.conf (optional, uses system default)
	Keytab     string `yaml:"keytab"`     // Path to keytab file (optional, uses credential cache)
	Realm      string `yaml:"realm"`      // Kerberos realm (optional, auto-detected)
	SPN        string `yaml:"spn"`        // Service Principal Name for MSSQL (optional)
	GSSEncMode string `yaml:"gssencmode"` // PostgreSQL GSSAPI encryption: disable, prefer, require (default: prefer)
}

// DialectConfig controls dialect resolution
type DialectConfig struct {
	LogWarnings   *bool  `yaml:"log_warnings"`   // warn about untested server versions (default: true)
	ProductName   string `yaml:"product_name"`   // override the product name for the connection type
	DriverVersion string `yaml:"driver_version"` // override the detected driver version
}

// WarnUntested reports whether untested server versions should be logged.
func (d DialectConfig) WarnUntested() bool {
	return d.LogWarnings == nil || *d.LogWarnings
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Verbosity string `yaml:"verbosity"` // debug, info, warn, error (default: info)
	Format    string `yaml:"format"`    // text or json (default: text)
}

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	SuppressWarnings bool
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	return LoadWithOptions(path, LoadOptions{})
}

// LoadWithOptions reads configuration from a YAML file with options.
func LoadWithOptions(path string, opts LoadOptions) (*Config, error) {
	// Check file permissions before reading (warns if insecure)
	if warning := checkFilePermissions(path); warning != "" && !opts.SuppressWarnings {
		logging.Warn("%s", warning)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return LoadBytes(data)
}

// LoadBytes reads configuration from YAML bytes.
func LoadBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Secrets are expanded after parsing so their contents never meet the YAML parser
	if err := cfg.expandSecrets(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg.finish()
}

// New builds a configuration from connection settings alone, as the CLI does
// when no config file is given.
func New(conn ConnectionConfig) (*Config, error) {
	cfg := Config{Connection: conn}
	if err := cfg.expandSecrets(); err != nil {
		return nil, err
	}
	return cfg.finish()
}

func (c *Config) finish() (*Config, error) {
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

var (
	templatePattern = regexp.MustCompile(`\$\{(?:(file|env):)?([^}]*)\}`)
	envNamePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// expandTemplateValue resolves ${file:/path}, ${env:NAME} and ${NAME}
// references. Malformed references are left as literals.
func expandTemplateValue(s string) (string, error) {
	var firstErr error
	out := templatePattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := templatePattern.FindStringSubmatch(match)
		kind, arg := parts[1], parts[2]
		switch kind {
		case "file":
			if arg == "" {
				return match
			}
			data, err := os.ReadFile(expandTilde(arg))
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("reading secret file: %w", err)
				}
				return match
			}
			return strings.TrimSpace(string(data))
		default:
			if !envNamePattern.MatchString(arg) {
				return match
			}
			return os.Getenv(arg)
		}
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (c *Config) expandSecrets() error {
	fields := []*string{
		&c.Connection.Host, &c.Connection.Database, &c.Connection.User,
		&c.Connection.Password, &c.Connection.Schema, &c.Connection.Path,
		&c.Connection.Krb5Conf, &c.Connection.Keytab, &c.Connection.SPN,
		&c.Dialect.ProductName, &c.Dialect.DriverVersion,
	}
	for _, f := range fields {
		v, err := expandTemplateValue(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	conn := &c.Connection
	conn.Type = strings.ToLower(conn.Type)
	if conn.Type == "" {
		conn.Type = TypePostgres
	}
	if conn.Port == 0 {
		switch conn.Type {
		case TypePostgres:
			conn.Port = 5432
		case TypeMSSQL:
			conn.Port = 1433
		case TypeMySQL:
			conn.Port = 3306
		}
	}
	if conn.Schema == "" {
		switch conn.Type {
		case TypePostgres:
			conn.Schema = "public"
		case TypeMSSQL:
			conn.Schema = "dbo"
		case TypeMySQL:
			conn.Schema = conn.Database // MySQL schemas are databases
		case TypeSQLite:
			conn.Schema = "main"
		}
	}
	if conn.Type == TypePostgres && conn.Driver == "" {
		conn.Driver = DriverPgx
	}
	// SSL defaults
	if conn.SSLMode == "" {
		if conn.Type == TypeMySQL {
			conn.SSLMode = "prefer"
		} else {
			conn.SSLMode = "require" // Secure default for PostgreSQL
		}
	}
	if conn.Encrypt == "" {
		conn.Encrypt = "true" // Secure default for MSSQL
	}
	if conn.MaxConnections == 0 {
		conn.MaxConnections = 4
	}
	if conn.Type == TypeSQLite {
		conn.Path = expandTilde(conn.Path)
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) validate() error {
	conn := c.Connection
	switch conn.Type {
	case TypeSQLite:
		if conn.Path == "" {
			return fmt.Errorf("connection.path is required for sqlite")
		}
	case TypePostgres, TypeMSSQL, TypeMySQL:
		if conn.Host == "" {
			return fmt.Errorf("connection.host is required")
		}
		if conn.Database == "" {
			return fmt.Errorf("connection.database is required")
		}
	default:
		return fmt.Errorf("connection.type must be 'postgres', 'mssql', 'mysql' or 'sqlite', got '%s'", conn.Type)
	}
	if conn.Type == TypePostgres && conn.Driver != DriverPgx && conn.Driver != DriverPq {
		return fmt.Errorf("connection.driver must be 'pgx' or 'pq', got '%s'", conn.Driver)
	}
	if conn.MaxConnections < 0 {
		return fmt.Errorf("connection.max_connections must not be negative")
	}
	if _, err := logging.ParseLevel(c.Logging.Verbosity); err != nil {
		return fmt.Errorf("logging.verbosity: %w", err)
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got '%s'", c.Logging.Format)
	}
	return nil
}

// DriverName returns the database/sql driver name for the connection type.
func (c *Config) DriverName() string {
	switch c.Connection.Type {
	case TypeMSSQL:
		return "sqlserver"
	case TypeMySQL:
		return "mysql"
	case TypeSQLite:
		return "sqlite"
	default:
		if c.Connection.Driver == DriverPq {
			return "postgres"
		}
		return "pgx"
	}
}

// DSN returns the connection string for the configured database
func (c *Config) DSN() string {
	conn := c.Connection
	switch conn.Type {
	case TypeMSSQL:
		return c.buildMSSQLDSN(conn.Host, conn.Port, conn.Database,
			conn.User, conn.Password, conn.Encrypt, conn.TrustServerCert,
			conn.Auth, conn.Krb5Conf, conn.Keytab, conn.Realm, conn.SPN)
	case TypeMySQL:
		return c.buildMySQLDSN(conn.Host, conn.Port, conn.Database, conn.User, conn.Password, conn.SSLMode)
	case TypeSQLite:
		return conn.Path
	default:
		return c.buildPostgresDSN(conn.Host, conn.Port, conn.Database,
			conn.User, conn.Password, conn.SSLMode,
			conn.Auth, conn.GSSEncMode)
	}
}

// buildMSSQLDSN builds an MSSQL connection string with optional Kerberos auth
func (c *Config) buildMSSQLDSN(host string, port int, database, user, password, encrypt string,
	trustServerCert bool, auth, krb5Conf, keytab, realm, spn string) string {

	trustCert := "false"
	if trustServerCert {
		trustCert = "true"
	}
	hostPort := net.JoinHostPort(host, strconv.Itoa(port))

	// Kerberos authentication
	if auth == "kerberos" {
		dsn := fmt.Sprintf("sqlserver://%s?database=%s&encrypt=%s&TrustServerCertificate=%s&authenticator=krb5",
			hostPort, url.QueryEscape(database), url.QueryEscape(encrypt), trustCert)

		// Optional Kerberos parameters
		if krb5Conf != "" {
			dsn += "&krb5-configfile=" + url.QueryEscape(krb5Conf)
		}
		if keytab != "" {
			dsn += "&krb5-keytabfile=" + url.QueryEscape(keytab)
		}
		if realm != "" {
			dsn += "&krb5-realm=" + url.QueryEscape(realm)
		}
		if spn != "" {
			dsn += "&ServerSPN=" + url.QueryEscape(spn)
		}
		// If user specified, use it as the principal
		if user != "" {
			dsn += "&krb5-username=" + url.QueryEscape(user)
		}
		return dsn
	}

	// Password authentication (default)
	return fmt.Sprintf("sqlserver://%s@%s?database=%s&encrypt=%s&TrustServerCertificate=%s",
		url.UserPassword(user, password).String(), hostPort, url.QueryEscape(database),
		url.QueryEscape(encrypt), trustCert)
}

// buildPostgresDSN builds a PostgreSQL connection string with optional Kerberos auth
func (c *Config) buildPostgresDSN(host string, port int, database, user, password, sslMode,
	auth, gssEncMode string) string {

	hostPort := net.JoinHostPort(host, strconv.Itoa(port))

	// Kerberos/GSSAPI authentication
	if auth == "kerberos" {
		gssEnc := "prefer"
		if gssEncMode != "" {
			gssEnc = gssEncMode
		}
		// For Kerberos, we don't include password in the DSN
		if user != "" {
			return fmt.Sprintf("postgres://%s@%s/%s?sslmode=%s&gssencmode=%s",
				url.User(user).String(), hostPort, url.PathEscape(database), sslMode, gssEnc)
		}
		return fmt.Sprintf("postgres://%s/%s?sslmode=%s&gssencmode=%s",
			hostPort, url.PathEscape(database), sslMode, gssEnc)
	}

	// Password authentication (default)
	return fmt.Sprintf("postgres://%s@%s/%s?sslmode=%s",
		url.UserPassword(user, password).String(), hostPort, url.PathEscape(database), sslMode)
}

// buildMySQLDSN builds a go-sql-driver DSN. ssl_mode maps onto the driver's
// tls parameter.
func (c *Config) buildMySQLDSN(host string, port int, database, user, password, sslMode string) string {
	mc := mysql.NewConfig()
	mc.User = user
	mc.Passwd = password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = database
	switch sslMode {
	case "disable":
		mc.TLSConfig = "false"
	case "require":
		mc.TLSConfig = "skip-verify"
	case "verify-ca", "verify-full":
		mc.TLSConfig = "true"
	default:
		mc.TLSConfig = "preferred"
	}
	return mc.FormatDSN()
}

// Sanitized returns a copy of the config with sensitive fields redacted
func (c *Config) Sanitized() *Config {
	sanitized := *c // shallow copy

	if sanitized.Connection.Password != "" {
		sanitized.Connection.Password = "[REDACTED]"
	}

	return &sanitized
}
