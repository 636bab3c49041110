package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestMSSQLDSNURLEncoding(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		database string
		wantUser string
		wantPass string
		wantDB   string
	}{
		{
			name:     "plain credentials",
			user:     "admin",
			password: "secret",
			database: "mydb",
			wantUser: "admin",
			wantPass: "secret",
			wantDB:   "mydb",
		},
		{
			name:     "password with @",
			user:     "admin",
			password: "pass@word",
			database: "mydb",
			wantUser: "admin",
			wantPass: "pass%40word",
			wantDB:   "mydb",
		},
		{
			name:     "password with colon",
			user:     "admin",
			password: "pass:word",
			database: "mydb",
			wantUser: "admin",
			wantPass: "pass%3Aword",
			wantDB:   "mydb",
		},
		{
			name:     "password with slash",
			user:     "admin",
			password: "pass/word",
			database: "mydb",
			wantUser: "admin",
			wantPass: "pass%2Fword",
			wantDB:   "mydb",
		},
		{
			name:     "user with @",
			user:     "user@domain",
			password: "secret",
			database: "mydb",
			wantUser: "user%40domain",
			wantPass: "secret",
			wantDB:   "mydb",
		},
		{
			name:     "database with spaces",
			user:     "admin",
			password: "secret",
			database: "my database",
			wantUser: "admin",
			wantPass: "secret",
			wantDB:   "my+database", // QueryEscape uses + for spaces
		},
		{
			name:     "complex password",
			user:     "admin",
			password: "P@ss:w/rd?123",
			database: "mydb",
			wantUser: "admin",
			wantPass: "P%40ss%3Aw%2Frd%3F123",
			wantDB:   "mydb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			dsn := cfg.buildMSSQLDSN("localhost", 1433, tt.database, tt.user, tt.password,
				"true", false, "", "", "", "", "")

			// Check that encoded values appear in DSN
			if !strings.Contains(dsn, tt.wantUser+":") {
				t.Errorf("MSSQL DSN missing encoded user %q in %q", tt.wantUser, dsn)
			}
			if !strings.Contains(dsn, ":"+tt.wantPass+"@") {
				t.Errorf("MSSQL DSN missing encoded password %q in %q", tt.wantPass, dsn)
			}
			if !strings.Contains(dsn, "database="+tt.wantDB) {
				t.Errorf("MSSQL DSN missing encoded database %q in %q", tt.wantDB, dsn)
			}
		})
	}
}

func TestPostgresDSNURLEncoding(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		database string
		wantUser string
		wantPass string
		wantDB   string
	}{
		{
			name:     "plain credentials",
			user:     "admin",
			password: "secret",
			database: "mydb",
			wantUser: "admin",
			wantPass: "secret",
			wantDB:   "mydb",
		},
		{
			name:     "password with @",
			user:     "admin",
			password: "pass@word",
			database: "mydb",
			wantUser: "admin",
			wantPass: "pass%40word",
			wantDB:   "mydb",
		},
		{
			name:     "password with colon",
			user:     "admin",
			password: "pass:word",
			database: "mydb",
			wantUser: "admin",
			wantPass: "pass%3Aword",
			wantDB:   "mydb",
		},
		{
			name:     "password with slash",
			user:     "admin",
			password: "pass/word",
			database: "mydb",
			wantUser: "admin",
			wantPass: "pass%2Fword",
			wantDB:   "mydb",
		},
		{
			name:     "user with @",
			user:     "user@domain",
			password: "secret",
			database: "mydb",
			wantUser: "user%40domain",
			wantPass: "secret",
			wantDB:   "mydb",
		},
		{
			name:     "database with spaces",
			user:     "admin",
			password: "secret",
			database: "my database",
			wantUser: "admin",
			wantPass: "secret",
			wantDB:   "my%20database", // PathEscape uses %20 for spaces
		},
		{
			name:     "complex password",
			user:     "admin",
			password: "P@ss:w/rd?123",
			database: "mydb",
			wantUser: "admin",
			wantPass: "P%40ss%3Aw%2Frd%3F123",
			wantDB:   "mydb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			dsn := cfg.buildPostgresDSN("localhost", 5432, tt.database, tt.user, tt.password,
				"disable", "", "")

			// Check that encoded values appear in DSN
			if !strings.Contains(dsn, tt.wantUser+":") {
				t.Errorf("Postgres DSN missing encoded user %q in %q", tt.wantUser, dsn)
			}
			if !strings.Contains(dsn, ":"+tt.wantPass+"@") {
				t.Errorf("Postgres DSN missing encoded password %q in %q", tt.wantPass, dsn)
			}
			if !strings.Contains(dsn, "/"+tt.wantDB+"?") {
				t.Errorf("Postgres DSN missing encoded database %q in %q", tt.wantDB, dsn)
			}
		})
	}
}

func TestMSSQLKerberosEncoding(t *testing.T) {
	cfg := &Config{}

	// Test MSSQL Kerberos with special chars
	dsn := cfg.buildMSSQLDSN("localhost", 1433, "my database", "user@REALM.COM", "",
		"true", false, "kerberos", "/path/to/krb5.conf", "", "REALM.COM", "MSSQLSvc/host:1433")

	// database is QueryEscaped (+ for spaces)
	if !strings.Contains(dsn, "database=my+database") {
		t.Errorf("MSSQL Kerberos DSN missing encoded database in %q", dsn)
	}
	// username in query param is QueryEscaped
	if !strings.Contains(dsn, "krb5-username=user%40REALM.COM") {
		t.Errorf("MSSQL Kerberos DSN missing encoded username in %q", dsn)
	}
	// SPN with special chars
	if !strings.Contains(dsn, "ServerSPN=MSSQLSvc%2Fhost%3A1433") {
		t.Errorf("MSSQL Kerberos DSN missing encoded SPN in %q", dsn)
	}
}

func TestPostgresKerberosEncoding(t *testing.T) {
	cfg := &Config{}

	// Test Postgres Kerberos with special chars
	dsn := cfg.buildPostgresDSN("localhost", 5432, "my database", "user@REALM.COM", "",
		"disable", "kerberos", "prefer")

	// database is PathEscaped (%20 for spaces)
	if !strings.Contains(dsn, "/my%20database?") {
		t.Errorf("Postgres Kerberos DSN missing encoded database in %q", dsn)
	}
	// user in userinfo is QueryEscaped
	if !strings.Contains(dsn, "user%40REALM.COM@") {
		t.Errorf("Postgres Kerberos DSN missing encoded user in %q", dsn)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := &Config{}
	dsn := cfg.buildMySQLDSN("db.local", 3306, "shop", "app", "p@ss:word", "disable")

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", dsn, err)
	}
	if parsed.User != "app" || parsed.Passwd != "p@ss:word" {
		t.Errorf("credentials did not round-trip: %q / %q", parsed.User, parsed.Passwd)
	}
	if parsed.Addr != "db.local:3306" || parsed.DBName != "shop" {
		t.Errorf("unexpected address %q or database %q", parsed.Addr, parsed.DBName)
	}
	if parsed.TLSConfig != "false" {
		t.Errorf("expected tls=false for ssl_mode disable, got %q", parsed.TLSConfig)
	}
}

func TestDefaults(t *testing.T) {
	tests := []struct {
		name       string
		conn       ConnectionConfig
		wantPort   int
		wantSchema string
		wantDriver string
	}{
		{"postgres", ConnectionConfig{Type: "postgres", Host: "h", Database: "d"}, 5432, "public", "pgx"},
		{"postgres pq", ConnectionConfig{Type: "postgres", Driver: "pq", Host: "h", Database: "d"}, 5432, "public", "postgres"},
		{"mssql", ConnectionConfig{Type: "MSSQL", Host: "h", Database: "d"}, 1433, "dbo", "sqlserver"},
		{"mysql", ConnectionConfig{Type: "mysql", Host: "h", Database: "shop"}, 3306, "shop", "mysql"},
		{"sqlite", ConnectionConfig{Type: "sqlite", Path: "/tmp/x.db"}, 0, "main", "sqlite"},
		{"type defaults to postgres", ConnectionConfig{Host: "h", Database: "d"}, 5432, "public", "pgx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New(tt.conn)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if cfg.Connection.Port != tt.wantPort {
				t.Errorf("port = %d, want %d", cfg.Connection.Port, tt.wantPort)
			}
			if cfg.Connection.Schema != tt.wantSchema {
				t.Errorf("schema = %q, want %q", cfg.Connection.Schema, tt.wantSchema)
			}
			if got := cfg.DriverName(); got != tt.wantDriver {
				t.Errorf("DriverName() = %q, want %q", got, tt.wantDriver)
			}
			if !cfg.Dialect.WarnUntested() {
				t.Error("version warnings should default on")
			}
			if cfg.Logging.Verbosity != "info" || cfg.Logging.Format != "text" {
				t.Errorf("unexpected logging defaults %+v", cfg.Logging)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		errorMsg string
	}{
		{
			name:     "unknown type",
			yaml:     "connection:\n  type: oracle\n  host: h\n  database: d\n",
			errorMsg: "connection.type must be",
		},
		{
			name:     "missing host",
			yaml:     "connection:\n  type: mssql\n  database: d\n",
			errorMsg: "connection.host is required",
		},
		{
			name:     "missing database",
			yaml:     "connection:\n  type: mysql\n  host: h\n",
			errorMsg: "connection.database is required",
		},
		{
			name:     "sqlite without path",
			yaml:     "connection:\n  type: sqlite\n",
			errorMsg: "connection.path is required",
		},
		{
			name:     "bad driver",
			yaml:     "connection:\n  type: postgres\n  driver: odbc\n  host: h\n  database: d\n",
			errorMsg: "connection.driver must be",
		},
		{
			name:     "bad verbosity",
			yaml:     "connection:\n  type: sqlite\n  path: x.db\nlogging:\n  verbosity: loud\n",
			errorMsg: "logging.verbosity",
		},
		{
			name:     "bad format",
			yaml:     "connection:\n  type: sqlite\n  path: x.db\nlogging:\n  format: xml\n",
			errorMsg: "logging.format must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestDialectSection(t *testing.T) {
	cfg, err := LoadBytes([]byte(`
connection:
  type: mssql
  host: sql1
  database: app
dialect:
  log_warnings: false
  driver_version: "9.2.1"
`))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if cfg.Dialect.WarnUntested() {
		t.Error("log_warnings: false should disable version warnings")
	}
	if cfg.Dialect.DriverVersion != "9.2.1" {
		t.Errorf("driver_version = %q", cfg.Dialect.DriverVersion)
	}
}

func TestSanitized(t *testing.T) {
	cfg := &Config{Connection: ConnectionConfig{Password: "hunter2", User: "app"}}
	s := cfg.Sanitized()
	if s.Connection.Password != "[REDACTED]" {
		t.Errorf("password not redacted: %q", s.Connection.Password)
	}
	if cfg.Connection.Password != "hunter2" {
		t.Error("Sanitized must not modify the original")
	}
	if s.Connection.User != "app" {
		t.Errorf("user should be kept, got %q", s.Connection.User)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "connection:\n  type: sqlite\n  path: notes.db\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadWithOptions(path, LoadOptions{SuppressWarnings: true})
	if err != nil {
		t.Fatalf("LoadWithOptions: %v", err)
	}
	if cfg.DSN() != "notes.db" {
		t.Errorf("DSN() = %q, want notes.db", cfg.DSN())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExpandTemplateValue(t *testing.T) {
	// Create a temp file with a secret
	tmpDir := t.TempDir()
	secretFile := filepath.Join(tmpDir, "secret.txt")
	if err := os.WriteFile(secretFile, []byte("  my-secret-password  \n"), 0600); err != nil {
		t.Fatalf("failed to create secret file: %v", err)
	}

	// Set an env var for testing
	os.Setenv("TEST_SECRET_VAR", "env-secret-value")
	defer os.Unsetenv("TEST_SECRET_VAR")

	tests := []struct {
		name      string
		input     string
		expected  string
		expectErr bool
	}{
		{
			name:     "cleartext password",
			input:    "my-plain-password",
			expected: "my-plain-password",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "file template",
			input:    "${file:" + secretFile + "}",
			expected: "my-secret-password", // Whitespace trimmed
		},
		{
			name:     "env template",
			input:    "${env:TEST_SECRET_VAR}",
			expected: "env-secret-value",
		},
		{
			name:     "env template missing var",
			input:    "${env:NONEXISTENT_VAR_12345}",
			expected: "", // Empty, no error
		},
		{
			name:      "file template missing file",
			input:     "${file:/nonexistent/path/to/secret}",
			expectErr: true,
		},
		{
			name:     "not a template - dollar sign without braces",
			input:    "$file:/path",
			expected: "$file:/path",
		},
		{
			name:     "not a template - partial pattern",
			input:    "${file:}",
			expected: "${file:}", // Empty path, treated as literal
		},
		{
			name:     "legacy env var syntax expands",
			input:    "${TEST_SECRET_VAR}",
			expected: "env-secret-value", // Legacy ${VAR} expands like ${env:VAR}
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandTemplateValue(tt.input)

			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}
func TestLoadBytesWithSecretTemplates(t *testing.T) {
	// Create temp files with secrets
	tmpDir := t.TempDir()
	pgPwdFile := filepath.Join(tmpDir, "pg_password")

	if err := os.WriteFile(pgPwdFile, []byte("pg-secret-456"), 0600); err != nil {
		t.Fatalf("failed to create pg password file: %v", err)
	}

	// Set env var for testing
	os.Setenv("TEST_PG_PASSWORD", "env-pg-password")
	defer os.Unsetenv("TEST_PG_PASSWORD")

	tests := []struct {
		name      string
		yaml      string
		expected  string
		expectErr bool
	}{
		{
			name: "file-based secret",
			yaml: `
connection:
  type: postgres
  host: pg-server
  database: appdb
  user: postgres
  password: ${file:` + pgPwdFile + `}
`,
			expected: "pg-secret-456",
		},
		{
			name: "env-based secret",
			yaml: `
connection:
  type: postgres
  host: pg-server
  database: appdb
  user: postgres
  password: ${env:TEST_PG_PASSWORD}
`,
			expected: "env-pg-password",
		},
		{
			name: "cleartext",
			yaml: `
connection:
  type: mssql
  host: mssql-server
  database: appdb
  user: sa
  password: plain-password
`,
			expected: "plain-password",
		},
		{
			name: "missing file should error",
			yaml: `
connection:
  type: mssql
  host: mssql-server
  database: appdb
  user: sa
  password: ${file:/nonexistent/secret}
`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadBytes([]byte(tt.yaml))

			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if cfg.Connection.Password != tt.expected {
				t.Errorf("password: expected %q, got %q", tt.expected, cfg.Connection.Password)
			}
		})
	}
}

func TestExpandSecretsWithTilde(t *testing.T) {
	// Create a secret file in temp dir and use tilde expansion
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot get home directory")
	}

	// Create a temp secret in a known location
	tmpDir := t.TempDir()
	secretFile := filepath.Join(tmpDir, "test-secret")
	if err := os.WriteFile(secretFile, []byte("tilde-secret"), 0600); err != nil {
		t.Fatalf("failed to create secret file: %v", err)
	}

	// Test that tilde expansion works in file paths
	// We can't easily test ~ directly, but we can test the expandTilde function
	result := expandTilde("~/some/path")
	expected := filepath.Join(home, "some/path")
	if result != expected {
		t.Errorf("expandTilde: expected %q, got %q", expected, result)
	}
}

func TestSecretsWithSpecialCharacters(t *testing.T) {
	// Test that secrets containing YAML special characters work correctly
	tmpDir := t.TempDir()

	tests := []struct {
		name          string
		secretContent string
		expected      string
	}{
		{
			name:          "password with colon",
			secretContent: "pass:word",
			expected:      "pass:word",
		},
		{
			name:          "password with quotes",
			secretContent: `pass"word'test`,
			expected:      `pass"word'test`,
		},
		{
			name:          "password with special chars",
			secretContent: "p@ss#w0rd!$%^&*()",
			expected:      "p@ss#w0rd!$%^&*()",
		},
		{
			name:          "password with spaces",
			secretContent: "pass word with spaces",
			expected:      "pass word with spaces",
		},
		{
			name:          "password with newline gets trimmed",
			secretContent: "password\n",
			expected:      "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create secret file
			secretFile := filepath.Join(tmpDir, "secret-"+tt.name)
			if err := os.WriteFile(secretFile, []byte(tt.secretContent), 0600); err != nil {
				t.Fatalf("failed to create secret file: %v", err)
			}

			// Test via LoadBytes - password field is quoted in YAML so special chars are safe
			yaml := `
connection:
  type: mssql
  host: mssql-server
  database: sourcedb
  user: sa
  password: ${file:` + secretFile + `}
`
			cfg, err := LoadBytes([]byte(yaml))
			if err != nil {
				t.Fatalf("LoadBytes failed: %v", err)
			}

			if cfg.Connection.Password != tt.expected {
				t.Errorf("expected password %q, got %q", tt.expected, cfg.Connection.Password)
			}
		})
	}
}

func TestInvalidEnvVarNames(t *testing.T) {
	// Test that invalid env var names are treated as literals (not expanded)
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "env var starting with number",
			input:    "${env:1INVALID}",
			expected: "${env:1INVALID}", // Not a valid env var name, treated as literal
		},
		{
			name:     "env var with hyphen",
			input:    "${env:INVALID-VAR}",
			expected: "${env:INVALID-VAR}", // Hyphen not allowed, treated as literal
		},
		{
			name:     "legacy var starting with number",
			input:    "${1INVALID}",
			expected: "${1INVALID}", // Not a valid env var name
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandTemplateValue(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}
