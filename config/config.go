package config

import (
	"errors"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Auth         AuthConfig
	WebAuthn     WebAuthnConfig
	Mail         MailConfig
	Gamification GamificationConfig
	Jobs         JobsConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME"     envDefault:"Gladiadores"`
	Environment string `env:"APP_ENV"      envDefault:"development"`
	BaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:5173"`
	// Version is reported to the PWA service worker; clients below MinVersion must refresh.
	Version    string `env:"APP_VERSION"     envDefault:"1.0.0"`
	MinVersion string `env:"APP_MIN_VERSION" envDefault:"1.0.0"`
}

type ServerConfig struct {
	Port           string   `env:"PORT"            envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	// Requests per second allowed per client on sensitive routes.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

type DatabaseConfig struct {
	URL          string `env:"POSTGRES_URL"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	AutoMigrate  bool   `env:"DB_AUTO_MIGRATE"   envDefault:"true"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"       envDefault:"0"`
}

type StorageConfig struct {
	Endpoint     string        `env:"STORAGE_ENDPOINT"`
	Region       string        `env:"STORAGE_REGION"      envDefault:"us-east-1"`
	Bucket       string        `env:"STORAGE_BUCKET"      envDefault:"evidencias"`
	AccessKey    string        `env:"STORAGE_ACCESS_KEY"`
	SecretKey    string        `env:"STORAGE_SECRET_KEY"`
	UsePathStyle bool          `env:"STORAGE_PATH_STYLE"  envDefault:"true"`
	PresignTTL   time.Duration `env:"STORAGE_PRESIGN_TTL" envDefault:"15m"`
	MaxUploadMB  int64         `env:"STORAGE_MAX_UPLOAD_MB" envDefault:"8"`
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"JWT_TTL"         envDefault:"24h"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"15m"`
}

type WebAuthnConfig struct {
	RPDisplayName string        `env:"WEBAUTHN_RP_DISPLAY_NAME" envDefault:"Gladiadores"`
	RPID          string        `env:"WEBAUTHN_RP_ID"           envDefault:"localhost"`
	RPOrigins     []string      `env:"WEBAUTHN_RP_ORIGINS"      envSeparator:"," envDefault:"http://localhost:5173"`
	SessionTTL    time.Duration `env:"WEBAUTHN_SESSION_TTL"     envDefault:"5m"`
}

type MailConfig struct {
	Host       string `env:"SMTP_HOST"`
	Port       int    `env:"SMTP_PORT"      envDefault:"587"`
	Username   string `env:"SMTP_USERNAME"`
	Password   string `env:"SMTP_PASSWORD"`
	From       string `env:"SMTP_FROM"      envDefault:"no-reply@gladiadores.do"`
	FromName   string `env:"SMTP_FROM_NAME" envDefault:"Gladiadores"`
	UseSSL     bool   `env:"SMTP_USE_SSL"   envDefault:"false"`
	RequireTLS bool   `env:"SMTP_REQUIRE_TLS" envDefault:"true"`
}

type GamificationConfig struct {
	RegistrationPoints int64 `env:"POINTS_REGISTRATION" envDefault:"10"`
	StepPoints         int64 `env:"POINTS_STEP"         envDefault:"5"`
	ReferralPoints     int64 `env:"POINTS_REFERRAL"     envDefault:"20"`
	VotePoints         int64 `env:"POINTS_VOTE"         envDefault:"50"`
	DonationPoints     int64 `env:"POINTS_DONATION"     envDefault:"100"`
	BronzeReferrals    int64 `env:"BRONZE_REFERRALS"    envDefault:"3"`
	GoldenReferrals    int64 `env:"GOLDEN_REFERRALS"    envDefault:"10"`
	CIDPThreshold      int64 `env:"CIDP_THRESHOLD"      envDefault:"500"`
	// Maximum number of differing digits tolerated between OCR text and the declared cédula.
	OCRMaxDistance int `env:"OCR_MAX_DISTANCE" envDefault:"2"`
}

type JobsConfig struct {
	ReconcileSpec string `env:"JOB_RECONCILE_SPEC" envDefault:"0 0 3 * * *"`
	Enabled       bool   `env:"JOBS_ENABLED"       envDefault:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("POSTGRES_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Gamification.BronzeReferrals > c.Gamification.GoldenReferrals {
		return errors.New("BRONZE_REFERRALS must not exceed GOLDEN_REFERRALS")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
