package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func TestPasswordPolicyValidate(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
	}

	if err := policy.Validate("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := policy.Validate("lowercase1!"); err == nil {
		t.Fatalf("expected error for missing uppercase")
	}
	if err := policy.Validate("UPPERCASE1!"); err == nil {
		t.Fatalf("expected error for missing lowercase")
	}
	if err := policy.Validate("NoNumber!"); err == nil {
		t.Fatalf("expected error for missing number")
	}
	if err := policy.Validate("NoSpecial1"); err == nil {
		t.Fatalf("expected error for missing special")
	}
	if err := policy.Validate("GoodPass1!"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}

func TestPasswordPolicyValidate_LengthOnly(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}

	if err := policy.Validate("1234567"); err == nil {
		t.Fatalf("expected error for 7 character password")
	}
	if err := policy.Validate("12345678"); err != nil {
		t.Fatalf("expected 8 character password to pass, got %v", err)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := getEnv("TEST_STRING", "default"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	if got := getEnv("MISSING_STRING", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("TEST_DURATION", "30")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}
	t.Setenv("TEST_DURATION", "invalid")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected default duration, got %v", got)
	}

	t.Setenv("TEST_BOOL", "true")
	if got := getBoolEnv("TEST_BOOL", false); got != true {
		t.Fatalf("expected true, got %v", got)
	}
	t.Setenv("TEST_BOOL", "invalid")
	if got := getBoolEnv("TEST_BOOL", true); got != true {
		t.Fatalf("expected default bool, got %v", got)
	}

	t.Setenv("TEST_INT", "42")
	if got := getIntEnv("TEST_INT", 5); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("TEST_INT", "invalid")
	if got := getIntEnv("TEST_INT", 5); got != 5 {
		t.Fatalf("expected default int, got %d", got)
	}

	t.Setenv("TEST_LIST", " a , b,,c ")
	got := getListEnv("TEST_LIST", []string{"default"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected list: %#v", got)
	}
	t.Setenv("TEST_LIST", " , ")
	if got := getListEnv("TEST_LIST", []string{"default"}); len(got) != 1 || got[0] != "default" {
		t.Fatalf("expected default list, got %#v", got)
	}
}

func chdirTemp(t *testing.T) string {
	t.Helper()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
	return tmp
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "")
	t.Setenv("MYSQL_DSN", "")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when MYSQL_DSN is missing")
	}
}

func TestLoadRejectsUnsupportedAlgorithm(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/nutrition?parseTime=true")
	t.Setenv("JWT_ALGORITHM", "RS256")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestLoadRejectsUnsupportedLogFormat(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/nutrition?parseTime=true")
	t.Setenv("LOG_FORMAT", "xml")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error for unsupported log format")
	}
}

func TestLoadSuccess(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/nutrition?parseTime=true")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("GRPC_PORT", "9091")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "20")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "3")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("DB_MAX_IDLE_CONNS", "4")
	t.Setenv("DB_CONN_MAX_LIFETIME_MINUTES", "30")
	t.Setenv("PASSWORD_MIN_LENGTH", "10")
	t.Setenv("PASSWORD_REQUIRE_LOWERCASE", "true")
	t.Setenv("PASSWORD_HASH_COST", "12")
	t.Setenv("PASSWORD_HASH_CONCURRENCY", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("CORS_ORIGINS", "https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTP.Port != "8081" || cfg.GRPC.Port != "9091" {
		t.Fatalf("unexpected ports: %s %s", cfg.HTTP.Port, cfg.GRPC.Port)
	}
	if cfg.HTTP.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected request timeout: %v", cfg.HTTP.RequestTimeout)
	}
	if cfg.MySQL.DSN != "user:pass@tcp(db:3306)/nutrition?parseTime=true" {
		t.Fatalf("unexpected mysql dsn: %s", cfg.MySQL.DSN)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 4 || cfg.MySQL.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("unexpected pool settings: %+v", cfg.MySQL)
	}
	if cfg.JWT.Algorithm != "HS512" {
		t.Fatalf("expected HS512, got %s", cfg.JWT.Algorithm)
	}
	if cfg.JWT.AccessTokenTTL != 20*time.Minute || cfg.JWT.RefreshTokenTTL != 3*24*time.Hour {
		t.Fatalf("unexpected jwt ttl: %v %v", cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	}
	if cfg.Password.Policy.MinLength != 10 ||
		cfg.Password.Policy.RequireUppercase != false ||
		cfg.Password.Policy.RequireLowercase != true ||
		cfg.Password.Policy.RequireNumber != false ||
		cfg.Password.Policy.RequireSpecial != false {
		t.Fatalf("unexpected password policy: %+v", cfg.Password.Policy)
	}
	if cfg.Password.HashCost != 12 || cfg.Password.HashConcurrency != 2 {
		t.Fatalf("unexpected hashing settings: %+v", cfg.Password)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != LogFormatText {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if len(cfg.CORS.Origins) != 1 || cfg.CORS.Origins[0] != "https://app.example.com" {
		t.Fatalf("unexpected cors origins: %#v", cfg.CORS.Origins)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		MySQL: MySQLConfig{DSN: "user:pass@tcp(localhost:3306)/nutrition?parseTime=true"},
	}
	if got := cfg.DSN(); got != cfg.MySQL.DSN {
		t.Fatalf("expected %q, got %q", cfg.MySQL.DSN, got)
	}
}

func TestDSNForcesParseTime(t *testing.T) {
	cfg := &Config{
		MySQL: MySQLConfig{DSN: "user:pass@tcp(localhost:3306)/nutrition"},
	}

	parsed, err := mysql.ParseDSN(cfg.DSN())
	if err != nil {
		t.Fatalf("parse dsn failed: %v", err)
	}
	if !parsed.ParseTime {
		t.Fatalf("expected parseTime to be enabled in %q", cfg.DSN())
	}
	if parsed.Addr != "localhost:3306" || parsed.DBName != "nutrition" || parsed.User != "user" {
		t.Fatalf("unexpected dsn fields: %#v", parsed)
	}
}

func TestLoadRejectsInvalidMySQLDSN(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "not-a-dsn")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error for invalid MYSQL_DSN")
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/nutrition?parseTime=true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTP.Port != "8080" || cfg.GRPC.Port != "9090" {
		t.Fatalf("expected default ports, got %s %s", cfg.HTTP.Port, cfg.GRPC.Port)
	}
	if cfg.JWT.Algorithm != "HS256" {
		t.Fatalf("expected default algorithm HS256, got %s", cfg.JWT.Algorithm)
	}
	if cfg.JWT.AccessTokenTTL != 15*time.Minute || cfg.JWT.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected default ttl: %v %v", cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	}
	if cfg.MySQL.MaxOpenConns != 15 || cfg.MySQL.MaxIdleConns != 5 {
		t.Fatalf("unexpected default pool: %+v", cfg.MySQL)
	}
	if cfg.Password.Policy.MinLength != 8 || cfg.Password.HashConcurrency <= 0 {
		t.Fatalf("unexpected default password config: %+v", cfg.Password)
	}
	if cfg.Log.Format != LogFormatJSON {
		t.Fatalf("expected json log format, got %s", cfg.Log.Format)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Fatalf("expected default cors origins, got %#v", cfg.CORS.Origins)
	}
}

func TestLoadRespectsEnvFileLocation(t *testing.T) {
	tmp := chdirTemp(t)

	envPath := filepath.Join(tmp, ".env")
	if err := os.WriteFile(envPath, []byte("JWT_SECRET=envfile-secret\nMYSQL_DSN=user:pass@tcp(localhost:3306)/nutrition?parseTime=true\nHTTP_PORT=9099\n"), 0600); err != nil {
		t.Fatalf("write .env failed: %v", err)
	}

	// godotenv never overrides variables already present in the environment.
	for _, key := range []string{"JWT_SECRET", "MYSQL_DSN", "HTTP_PORT"} {
		if value, ok := os.LookupEnv(key); ok {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("unsetenv failed: %v", err)
			}
			t.Cleanup(func() { _ = os.Setenv(key, value) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(key) })
		}
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWT.Secret != "envfile-secret" || cfg.HTTP.Port != "9099" {
		t.Fatalf("expected env file values, got %s %s", cfg.JWT.Secret, cfg.HTTP.Port)
	}
}
