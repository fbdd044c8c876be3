package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	GCP      GCPConfig
	Firebase FirebaseConfig
	PubSub   PubSubConfig
	Email    EmailConfig
	Eventing EventingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.UsesSQL() {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Email.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GEARMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"GEARMARKET_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GEARMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GEARMARKET_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"GEARMARKET_AUTO_MIGRATE" default:"false"`

	// BaseURL is used for every deep link embedded in notifications and emails.
	BaseURL string `envconfig:"GEARMARKET_BASE_URL" default:"https://gearmarket.kr"`

	// CORSOrigins overrides the browser origins allowed to call the API.
	CORSOrigins []string `envconfig:"GEARMARKET_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// PublicBaseURL returns the base URL without a trailing slash.
func (a AppConfig) PublicBaseURL() string {
	base := strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if base == "" {
		return DefaultBaseURL
	}
	return base
}

type StoreConfig struct {
	Backend string `envconfig:"GEARMARKET_STORE_BACKEND" default:"sql"`
}

func (s StoreConfig) UsesSQL() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), StoreBackendSQL)
}

func (s StoreConfig) UsesFirestore() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), StoreBackendFirestore)
}

func (s StoreConfig) validate() error {
	if s.UsesSQL() || s.UsesFirestore() {
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", EnvStoreBackend, StoreBackendSQL, StoreBackendFirestore, s.Backend)
}

type DBConfig struct {
	DSN    string `envconfig:"GEARMARKET_DB_DSN"`
	Driver string `envconfig:"GEARMARKET_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GEARMARKET_DB_HOST"`
	Port     int    `envconfig:"GEARMARKET_DB_PORT" default:"5432"`
	User     string `envconfig:"GEARMARKET_DB_USER"`
	Password string `envconfig:"GEARMARKET_DB_PASSWORD"`
	Name     string `envconfig:"GEARMARKET_DB_NAME"`
	SSLMode  string `envconfig:"GEARMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GEARMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GEARMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GEARMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GEARMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GEARMARKET_REDIS_URL"`
	Address      string        `envconfig:"GEARMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"GEARMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"GEARMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GEARMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GEARMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GEARMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GEARMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GEARMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret string `envconfig:"GEARMARKET_JWT_SECRET"`
	Issuer string `envconfig:"GEARMARKET_JWT_ISSUER" default:"gearmarket"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"GEARMARKET_GCP_PROJECT_ID"`
}

type FirebaseConfig struct {
	ProjectID         string `envconfig:"GEARMARKET_FIREBASE_PROJECT_ID"`
	CredentialsJSON   string `envconfig:"GEARMARKET_FIREBASE_CREDENTIALS_JSON"`
	CredentialsBase64 string `envconfig:"GEARMARKET_FIREBASE_CREDENTIALS_BASE64"`
	CredentialsFile   string `envconfig:"GEARMARKET_FIREBASE_CREDENTIALS_FILE"`
}

// Configured reports whether enough settings exist to boot the Admin SDK.
func (f FirebaseConfig) Configured() bool {
	return strings.TrimSpace(f.ProjectID) != ""
}

type PubSubConfig struct {
	DomainSubscription     string `envconfig:"GEARMARKET_PUBSUB_DOMAIN_SUBSCRIPTION" default:"gearmarket-notifications"`
	MaxOutstandingMessages int    `envconfig:"GEARMARKET_PUBSUB_MAX_OUTSTANDING" default:"50"`
	NumGoroutines          int    `envconfig:"GEARMARKET_PUBSUB_GOROUTINES" default:"2"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"GEARMARKET_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// EmailConfig drives provider selection. Providers are chosen from the
// credentials present here, never from the process environment at send time.
type EmailConfig struct {
	FromEmail        string `envconfig:"GEARMARKET_EMAIL_FROM" default:"noreply@gearmarket.kr"`
	FromName         string `envconfig:"GEARMARKET_EMAIL_FROM_NAME" default:"기어마켓"`
	ExecutionContext string `envconfig:"GEARMARKET_EMAIL_EXECUTION_CONTEXT" default:"server"`

	SendGrid SendGridConfig
	SES      SESConfig
	SMTP     SMTPConfig
}

type SendGridConfig struct {
	APIKey string `envconfig:"GEARMARKET_SENDGRID_API_KEY"`
}

func (s SendGridConfig) Configured() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type SESConfig struct {
	AccessKeyID     string `envconfig:"GEARMARKET_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"GEARMARKET_AWS_SECRET_ACCESS_KEY"`
	Region          string `envconfig:"GEARMARKET_AWS_REGION" default:"ap-northeast-2"`
}

func (s SESConfig) Configured() bool {
	return strings.TrimSpace(s.AccessKeyID) != "" && strings.TrimSpace(s.SecretAccessKey) != ""
}

type SMTPConfig struct {
	Host     string `envconfig:"GEARMARKET_SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"GEARMARKET_SMTP_PORT" default:"587"`
	Username string `envconfig:"GEARMARKET_SMTP_USER"`
	Password string `envconfig:"GEARMARKET_SMTP_PASS"`
}

func (s SMTPConfig) Configured() bool {
	return strings.TrimSpace(s.Username) != "" && strings.TrimSpace(s.Password) != ""
}

// Sender returns the configured from address, falling back to the baked-in default.
func (e EmailConfig) Sender() string {
	if from := strings.TrimSpace(e.FromEmail); from != "" {
		return from
	}
	return DefaultFromEmail
}

// ServerContext reports whether real provider SDKs may be used.
func (e EmailConfig) ServerContext() bool {
	ctx := strings.TrimSpace(e.ExecutionContext)
	return ctx == "" || strings.EqualFold(ctx, ExecutionContextServer)
}

func (e EmailConfig) validate() error {
	ctx := strings.TrimSpace(e.ExecutionContext)
	if ctx == "" || strings.EqualFold(ctx, ExecutionContextServer) || strings.EqualFold(ctx, ExecutionContextClient) {
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", EnvEmailExecutionContext, ExecutionContextServer, ExecutionContextClient, e.ExecutionContext)
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
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
