package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "nyumbalink"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "NYUMBALINK_DB_DSN"
	EnvDBHost = "NYUMBALINK_DB_HOST"
	EnvDBUser = "NYUMBALINK_DB_USER"
	EnvDBName = "NYUMBALINK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	PubSub       PubSubConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"NYUMBALINK_APP_ENV" required:"true"`
	Port         string `envconfig:"NYUMBALINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NYUMBALINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NYUMBALINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"NYUMBALINK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"NYUMBALINK_DB_DSN"`
	Driver string `envconfig:"NYUMBALINK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NYUMBALINK_DB_HOST"`
	LegacyPort     int    `envconfig:"NYUMBALINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NYUMBALINK_DB_USER"`
	LegacyPassword string `envconfig:"NYUMBALINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"NYUMBALINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"NYUMBALINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NYUMBALINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NYUMBALINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NYUMBALINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NYUMBALINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NYUMBALINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NYUMBALINK_REDIS_ADDR"`
	Password     string        `envconfig:"NYUMBALINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"NYUMBALINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NYUMBALINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NYUMBALINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NYUMBALINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NYUMBALINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NYUMBALINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"NYUMBALINK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"NYUMBALINK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"NYUMBALINK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"NYUMBALINK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"NYUMBALINK_GCS_BUCKET_NAME" required:"true"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"NYUMBALINK_MEDIA_MAX_UPLOAD_MB" default:"20"`
}

type PubSubConfig struct {
	MediaDeletionSubscription string `envconfig:"NYUMBALINK_PUBSUB_MEDIA_DELETION_SUBSCRIPTION"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"NYUMBALINK_IDEMPOTENCY_TTL" default:"24h"`
}

type RateLimitConfig struct {
	WriteWindow  time.Duration `envconfig:"NYUMBALINK_WRITE_RATE_LIMIT_WINDOW" default:"1m"`
	WriteIPLimit int           `envconfig:"NYUMBALINK_WRITE_RATE_LIMIT_PER_IP" default:"120"`
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

	dsn := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:     db.LegacyName,
		RawQuery: url.Values{"sslmode": []string{db.LegacySSLMode}}.Encode(),
	}
	db.DSN = dsn.String()
	return nil
}
