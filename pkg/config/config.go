package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Razorpay      RazorpayConfig
	Checkout      CheckoutConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"DAIRYDROP_APP_ENV" required:"true"`
	Port         string `envconfig:"DAIRYDROP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DAIRYDROP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DAIRYDROP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DAIRYDROP_DB_DSN"`
	Driver string `envconfig:"DAIRYDROP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DAIRYDROP_DB_HOST"`
	LegacyPort     int    `envconfig:"DAIRYDROP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DAIRYDROP_DB_USER"`
	LegacyPassword string `envconfig:"DAIRYDROP_DB_PASSWORD"`
	LegacyName     string `envconfig:"DAIRYDROP_DB_NAME"`
	LegacySSLMode  string `envconfig:"DAIRYDROP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DAIRYDROP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DAIRYDROP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DAIRYDROP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DAIRYDROP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DAIRYDROP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DAIRYDROP_REDIS_ADDR"`
	Password     string        `envconfig:"DAIRYDROP_REDIS_PASSWORD"`
	DB           int           `envconfig:"DAIRYDROP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DAIRYDROP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DAIRYDROP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DAIRYDROP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DAIRYDROP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DAIRYDROP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret              string `envconfig:"DAIRYDROP_JWT_SECRET" required:"true"`
	Issuer              string `envconfig:"DAIRYDROP_JWT_ISSUER" required:"true"`
	ExpirationMinutes   int    `envconfig:"DAIRYDROP_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshSecret       string `envconfig:"DAIRYDROP_JWT_REFRESH_SECRET" required:"true"`
	RefreshExpiryHours  int    `envconfig:"DAIRYDROP_JWT_REFRESH_EXPIRY_HOURS" default:"168"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DAIRYDROP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DAIRYDROP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DAIRYDROP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DAIRYDROP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DAIRYDROP_ARGON_KEY_LEN" default:"32"`
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"DAIRYDROP_RAZORPAY_KEY_ID"`
	KeySecret string        `envconfig:"DAIRYDROP_RAZORPAY_KEY_SECRET"`
	Timeout   time.Duration `envconfig:"DAIRYDROP_RAZORPAY_TIMEOUT" default:"30s"`
}

// Configured reports whether both gateway credentials are present.
func (r RazorpayConfig) Configured() bool {
	return strings.TrimSpace(r.KeyID) != "" && strings.TrimSpace(r.KeySecret) != ""
}

type CheckoutConfig struct {
	Currency           string `envconfig:"DAIRYDROP_CHECKOUT_CURRENCY" default:"INR"`
	OrderNumberPrefix  string `envconfig:"DAIRYDROP_ORDER_NUMBER_PREFIX" default:"DD"`
	OrderNumberRetries int    `envconfig:"DAIRYDROP_ORDER_NUMBER_RETRIES" default:"3"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DAIRYDROP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DAIRYDROP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DAIRYDROP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DAIRYDROP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DAIRYDROP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DAIRYDROP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DAIRYDROP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DAIRYDROP_AUTO_MIGRATE" default:"false"`
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
