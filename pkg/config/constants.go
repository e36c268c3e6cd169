package config

const (
	EnvPrefix = "AUTOPAY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:autopay.db?_foreign_keys=on"
)

const (
	EnvAppEnv = "AUTOPAY_APP_ENV"
	EnvPort   = "AUTOPAY_APP_PORT"

	EnvDBDSN    = "AUTOPAY_DB_DSN"
	EnvDBDriver = "AUTOPAY_DB_DRIVER"
	EnvDBHost   = "AUTOPAY_DB_HOST"
	EnvDBUser   = "AUTOPAY_DB_USER"
	EnvDBName   = "AUTOPAY_DB_NAME"

	EnvRedisURL  = "AUTOPAY_REDIS_URL"
	EnvUseSQLite = "AUTOPAY_USE_SQLITE"

	EnvRazorpayKeyID              = "AUTOPAY_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret          = "AUTOPAY_RAZORPAY_KEY_SECRET"
	EnvRazorpayWebhookSecret      = "AUTOPAY_RAZORPAY_WEBHOOK_SECRET"
	EnvRazorpayBaseURL            = "AUTOPAY_RAZORPAY_BASE_URL"
	EnvRazorpaySettlementCurrency = "AUTOPAY_RAZORPAY_SETTLEMENT_CURRENCY"

	EnvShopifyAPISecret = "AUTOPAY_SHOPIFY_API_SECRET"

	EnvSendgridAPIKey    = "AUTOPAY_SENDGRID_API_KEY"
	EnvSendgridFromEmail = "AUTOPAY_SENDGRID_FROM_EMAIL"
	EnvNotificationEmail = "AUTOPAY_NOTIFICATION_EMAIL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
