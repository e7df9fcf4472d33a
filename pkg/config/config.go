package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Storage       StorageConfig
	Diagnosis     DiagnosisConfig
	Metrics       MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs error
	if c.JWT.ExpirationMinutes <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvJWTExpMins))
	}
	if c.Storage.MaxUploadMB <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvStorageMaxUploadMB))
	}
	if c.Diagnosis.FallbackConfidence < 0 || c.Diagnosis.FallbackConfidence > 1 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be within [0,1]", EnvDiagnosisFallbackConfidence))
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("%s must be json or console", EnvLogFormat))
	}
	return errs
}

type AppConfig struct {
	Env          string   `envconfig:"HADEEQATI_APP_ENV" required:"true"`
	Port         string   `envconfig:"HADEEQATI_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"HADEEQATI_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"HADEEQATI_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"HADEEQATI_LOG_FORMAT" default:"json"`
	CORSOrigins  []string `envconfig:"HADEEQATI_CORS_ORIGINS" default:"http://localhost:3000"`
}

// IsSQLite reports whether the sqlite dialector should be used.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"HADEEQATI_DB_DSN"`
	Driver string `envconfig:"HADEEQATI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HADEEQATI_DB_HOST"`
	LegacyPort     int    `envconfig:"HADEEQATI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HADEEQATI_DB_USER"`
	LegacyPassword string `envconfig:"HADEEQATI_DB_PASSWORD"`
	LegacyName     string `envconfig:"HADEEQATI_DB_NAME"`
	LegacySSLMode  string `envconfig:"HADEEQATI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HADEEQATI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HADEEQATI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HADEEQATI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HADEEQATI_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"HADEEQATI_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HADEEQATI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HADEEQATI_REDIS_ADDR"`
	Password     string        `envconfig:"HADEEQATI_REDIS_PASSWORD"`
	DB           int           `envconfig:"HADEEQATI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HADEEQATI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HADEEQATI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HADEEQATI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HADEEQATI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HADEEQATI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HADEEQATI_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HADEEQATI_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"HADEEQATI_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"HADEEQATI_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HADEEQATI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HADEEQATI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HADEEQATI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HADEEQATI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HADEEQATI_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow             time.Duration `envconfig:"HADEEQATI_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentifierLimit    int           `envconfig:"HADEEQATI_AUTH_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"5"`
	LoginIPLimit            int           `envconfig:"HADEEQATI_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow          time.Duration `envconfig:"HADEEQATI_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIdentifierLimit int           `envconfig:"HADEEQATI_AUTH_RATE_LIMIT_REGISTER_IDENTIFIER_LIMIT" default:"3"`
	RegisterIPLimit         int           `envconfig:"HADEEQATI_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HADEEQATI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HADEEQATI_AUTO_MIGRATE" default:"false"`
}

type StorageConfig struct {
	UploadDir   string `envconfig:"HADEEQATI_UPLOAD_DIR" default:"uploads"`
	PublicPath  string `envconfig:"HADEEQATI_UPLOAD_PUBLIC_PATH" default:"/uploads"`
	MaxUploadMB int    `envconfig:"HADEEQATI_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes converts the configured upload ceiling into bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

type DiagnosisConfig struct {
	ClassifierSeed     int64   `envconfig:"HADEEQATI_DIAGNOSIS_SEED" default:"0"`
	FallbackConfidence float64 `envconfig:"HADEEQATI_DIAGNOSIS_FALLBACK_CONFIDENCE" default:"0.5"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"HADEEQATI_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"HADEEQATI_METRICS_PATH" default:"/metrics"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
		if db.DSN == "" || strings.HasPrefix(db.DSN, "postgres") {
			db.DSN = defaultSQLiteDSN
		}
		return nil
	}
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
