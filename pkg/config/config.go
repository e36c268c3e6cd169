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
	FeatureFlags FeatureFlagsConfig
	Webhooks     WebhooksConfig
	Razorpay     RazorpayConfig
	Shopify      ShopifyConfig
	Sendgrid     SendgridConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Razorpay.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AUTOPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"AUTOPAY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AUTOPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOPAY_DB_DSN"`
	Driver string `envconfig:"AUTOPAY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"AUTOPAY_DB_HOST"`
	Port     int    `envconfig:"AUTOPAY_DB_PORT" default:"5432"`
	User     string `envconfig:"AUTOPAY_DB_USER"`
	Password string `envconfig:"AUTOPAY_DB_PASSWORD"`
	Name     string `envconfig:"AUTOPAY_DB_NAME"`
	SSLMode  string `envconfig:"AUTOPAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOPAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOPAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOPAY_REDIS_URL"`
	Address      string        `envconfig:"AUTOPAY_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AUTOPAY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AUTOPAY_AUTO_MIGRATE" default:"false"`
}

type WebhooksConfig struct {
	IdempotencyTTL time.Duration `envconfig:"AUTOPAY_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
	MaxBodyBytes   int64         `envconfig:"AUTOPAY_WEBHOOK_MAX_BODY_BYTES" default:"1048576"`
	// NotifyTimeout bounds each fire-and-forget notification send.
	NotifyTimeout time.Duration `envconfig:"AUTOPAY_WEBHOOK_NOTIFY_TIMEOUT" default:"15s"`
}

type RazorpayConfig struct {
	KeyID              string        `envconfig:"AUTOPAY_RAZORPAY_KEY_ID" required:"true"`
	KeySecret          string        `envconfig:"AUTOPAY_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret      string        `envconfig:"AUTOPAY_RAZORPAY_WEBHOOK_SECRET"`
	BaseURL            string        `envconfig:"AUTOPAY_RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	SettlementCurrency string        `envconfig:"AUTOPAY_RAZORPAY_SETTLEMENT_CURRENCY" default:"INR"`
	Timeout            time.Duration `envconfig:"AUTOPAY_RAZORPAY_TIMEOUT" default:"20s"`
}

// SigningSecret returns the webhook secret, falling back to the API key secret.
func (r RazorpayConfig) SigningSecret() string {
	if s := strings.TrimSpace(r.WebhookSecret); s != "" {
		return s
	}
	return strings.TrimSpace(r.KeySecret)
}

func (r RazorpayConfig) validate() error {
	if _, err := url.ParseRequestURI(r.BaseURL); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvRazorpayBaseURL, err)
	}
	if len(strings.TrimSpace(r.SettlementCurrency)) != 3 {
		return fmt.Errorf("%s must be an ISO 4217 code", EnvRazorpaySettlementCurrency)
	}
	return nil
}

type ShopifyConfig struct {
	APISecret  string        `envconfig:"AUTOPAY_SHOPIFY_API_SECRET" required:"true"`
	APIVersion string        `envconfig:"AUTOPAY_SHOPIFY_API_VERSION" default:"2025-01"`
	AppHandle  string        `envconfig:"AUTOPAY_SHOPIFY_APP_HANDLE" default:"autopay-bridge"`
	Timeout    time.Duration `envconfig:"AUTOPAY_SHOPIFY_TIMEOUT" default:"20s"`
}

type SendgridConfig struct {
	APIKey            string `envconfig:"AUTOPAY_SENDGRID_API_KEY"`
	FromEmail         string `envconfig:"AUTOPAY_SENDGRID_FROM_EMAIL"`
	FromName          string `envconfig:"AUTOPAY_SENDGRID_FROM_NAME" default:"Autopay Bridge"`
	NotificationEmail string `envconfig:"AUTOPAY_NOTIFICATION_EMAIL"`
}

// Enabled reports whether enough settings exist to send mail.
func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != "" &&
		strings.TrimSpace(s.FromEmail) != "" &&
		strings.TrimSpace(s.NotificationEmail) != ""
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"AUTOPAY_CRON_INTERVAL" default:"6h"`
	AuditLimit int           `envconfig:"AUTOPAY_CRON_AUDIT_LIMIT" default:"200"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
