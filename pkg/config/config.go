package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Catalog      CatalogConfig
	Invites      InviteConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WATCHCREW_APP_ENV" required:"true"`
	Port         string `envconfig:"WATCHCREW_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"WATCHCREW_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"WATCHCREW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WATCHCREW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WATCHCREW_DB_DSN"`
	Driver string `envconfig:"WATCHCREW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WATCHCREW_DB_HOST"`
	LegacyPort     int    `envconfig:"WATCHCREW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WATCHCREW_DB_USER"`
	LegacyPassword string `envconfig:"WATCHCREW_DB_PASSWORD"`
	LegacyName     string `envconfig:"WATCHCREW_DB_NAME"`
	LegacySSLMode  string `envconfig:"WATCHCREW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WATCHCREW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WATCHCREW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WATCHCREW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WATCHCREW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WATCHCREW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WATCHCREW_REDIS_ADDR"`
	Password     string        `envconfig:"WATCHCREW_REDIS_PASSWORD"`
	DB           int           `envconfig:"WATCHCREW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WATCHCREW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WATCHCREW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WATCHCREW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WATCHCREW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WATCHCREW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WATCHCREW_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WATCHCREW_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WATCHCREW_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WATCHCREW_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WATCHCREW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WATCHCREW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WATCHCREW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WATCHCREW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WATCHCREW_ARGON_KEY_LEN" default:"32"`
}

type CatalogConfig struct {
	APIKey   string        `envconfig:"WATCHCREW_TMDB_API_KEY" required:"true"`
	BaseURL  string        `envconfig:"WATCHCREW_TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	Timeout  time.Duration `envconfig:"WATCHCREW_TMDB_TIMEOUT" default:"10s"`
	CacheTTL time.Duration `envconfig:"WATCHCREW_CATALOG_CACHE_TTL" default:"5m"`
}

type InviteConfig struct {
	CodeLength     int           `envconfig:"WATCHCREW_INVITE_CODE_LENGTH" default:"8"`
	DefaultExpiry  time.Duration `envconfig:"WATCHCREW_INVITE_DEFAULT_EXPIRY" default:"168h"`
	DefaultMaxUses int           `envconfig:"WATCHCREW_INVITE_DEFAULT_MAX_USES" default:"0"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WATCHCREW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WATCHCREW_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
