package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so the
// prefix only matters for unexpected fields.
const EnvPrefix = "GEARMARKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreBackendSQL       = "sql"
	StoreBackendFirestore = "firestore"

	ExecutionContextServer = "server"
	ExecutionContextClient = "client"

	DefaultBaseURL   = "https://gearmarket.kr"
	DefaultFromEmail = "noreply@gearmarket.kr"
)

const (
	EnvAppEnv                   = "GEARMARKET_APP_ENV"
	EnvPort                     = "GEARMARKET_APP_PORT"
	EnvBaseURL                  = "GEARMARKET_BASE_URL"
	EnvStoreBackend             = "GEARMARKET_STORE_BACKEND"
	EnvDBDSN                    = "GEARMARKET_DB_DSN"
	EnvDBHost                   = "GEARMARKET_DB_HOST"
	EnvDBUser                   = "GEARMARKET_DB_USER"
	EnvDBName                   = "GEARMARKET_DB_NAME"
	EnvRedisURL                 = "GEARMARKET_REDIS_URL"
	EnvJWTSecret                = "GEARMARKET_JWT_SECRET"
	EnvFirebaseProjectID        = "GEARMARKET_FIREBASE_PROJECT_ID"
	EnvEmailFrom                = "GEARMARKET_EMAIL_FROM"
	EnvEmailExecutionContext    = "GEARMARKET_EMAIL_EXECUTION_CONTEXT"
	EnvSendGridAPIKey           = "GEARMARKET_SENDGRID_API_KEY"
	EnvAWSAccessKeyID           = "GEARMARKET_AWS_ACCESS_KEY_ID"
	EnvAWSSecretAccessKey       = "GEARMARKET_AWS_SECRET_ACCESS_KEY"
	EnvSMTPUser                 = "GEARMARKET_SMTP_USER"
	EnvSMTPPass                 = "GEARMARKET_SMTP_PASS"
	EnvPubSubDomainSubscription = "GEARMARKET_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
