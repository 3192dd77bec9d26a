package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

type Config struct {
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	MySQL    MySQLConfig
	JWT      JWTConfig
	Password PasswordConfig
	Log      LogConfig
	CORS     CORSConfig
}

type HTTPConfig struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
}

type GRPCConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type JWTConfig struct {
	Secret          string
	Algorithm       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type PasswordConfig struct {
	Policy          PasswordPolicy
	HashCost        int
	HashConcurrency int
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	Origins []string
}

type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

func (p PasswordPolicy) Validate(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}
	if _, err := mysql.ParseDSN(mysqlDSN); err != nil {
		return nil, fmt.Errorf("invalid MYSQL_DSN: %w", err)
	}

	algorithm := strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256"))
	if _, ok := supportedAlgorithms[algorithm]; !ok {
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q", algorithm)
	}

	logFormat := strings.ToLower(getEnv("LOG_FORMAT", LogFormatJSON))
	if logFormat != LogFormatJSON && logFormat != LogFormatText {
		return nil, fmt.Errorf("unsupported LOG_FORMAT %q", logFormat)
	}

	return &Config{
		HTTP: HTTPConfig{
			Host:           getEnv("HTTP_HOST", "0.0.0.0"),
			Port:           getEnv("HTTP_PORT", "8080"),
			RequestTimeout: time.Duration(getIntEnv("HTTP_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		GRPC: GRPCConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 15),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME_MINUTES", time.Hour),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_MINUTES", 10*time.Minute),
		},
		JWT: JWTConfig{
			Secret:          jwtSecret,
			Algorithm:       algorithm,
			AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 15*time.Minute),
			RefreshTokenTTL: time.Duration(getIntEnv("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Policy:          loadPasswordPolicy(),
			HashCost:        getIntEnv("PASSWORD_HASH_COST", 10),
			HashConcurrency: getIntEnv("PASSWORD_HASH_CONCURRENCY", runtime.NumCPU()),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: logFormat,
		},
		CORS: CORSConfig{
			Origins: getListEnv("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:8000"}),
		},
	}, nil
}

// DSN returns the MySQL DSN with parseTime forced on, since timestamps are
// scanned into time.Time.
func (c *Config) DSN() string {
	dsn, err := mysql.ParseDSN(c.MySQL.DSN)
	if err != nil {
		return c.MySQL.DSN
	}
	dsn.ParseTime = true

	return dsn.FormatDSN()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func loadPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        getIntEnv("PASSWORD_MIN_LENGTH", 8),
		RequireUppercase: getBoolEnv("PASSWORD_REQUIRE_UPPERCASE", false),
		RequireLowercase: getBoolEnv("PASSWORD_REQUIRE_LOWERCASE", false),
		RequireNumber:    getBoolEnv("PASSWORD_REQUIRE_NUMBER", false),
		RequireSpecial:   getBoolEnv("PASSWORD_REQUIRE_SPECIAL", false),
	}
}
