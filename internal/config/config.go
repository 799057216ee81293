package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config regroupe tous les réglages du serveur, lus depuis l'environnement
type Config struct {
	Env           string
	Port          string
	EnvFileLoaded bool

	SessionSecret string
	JWTSecret     string
	JWTTTL        time.Duration

	RedisHost     string
	RedisPassword string
	StorageTTL    time.Duration

	// Latences simulées (login, M-Pesa, carte)
	AuthLatency       time.Duration
	MpesaRequestDelay time.Duration
	MpesaConfirmDelay time.Duration
	CardDelay         time.Duration

	LowStockThreshold int

	StripeSecretKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	AllowedOrigins []string
}

// Secrets de développement : jamais utilisés quand APP_ENV=production
const (
	devSessionSecret = "dev-session-secret"
	devJWTSecret     = "dev-jwt-secret"
)

var ErrMissingSecret = errors.New("secret manquant")

// Load charge le fichier .env (s'il existe) puis lit la configuration
func Load() Config {
	loaded := godotenv.Load(".env") == nil

	env := getEnv("APP_ENV", "development")
	sessionSecret, jwtSecret := os.Getenv("SESSION_SECRET"), os.Getenv("JWT_SECRET")
	if env != "production" {
		sessionSecret = orDefault(sessionSecret, devSessionSecret)
		jwtSecret = orDefault(jwtSecret, devJWTSecret)
	}

	return Config{
		Env:           env,
		Port:          getEnv("PORT", "8080"),
		EnvFileLoaded: loaded,

		SessionSecret: sessionSecret,
		JWTSecret:     jwtSecret,
		JWTTTL:        getDuration("JWT_TTL", 24*time.Hour),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		StorageTTL:    getDuration("STORAGE_TTL", 30*24*time.Hour),

		AuthLatency:       getDuration("AUTH_LATENCY", 800*time.Millisecond),
		MpesaRequestDelay: getDuration("MPESA_REQUEST_DELAY", 2*time.Second),
		MpesaConfirmDelay: getDuration("MPESA_CONFIRM_DELAY", 3*time.Second),
		CardDelay:         getDuration("CARD_DELAY", 2*time.Second),

		LowStockThreshold: getInt("LOW_STOCK_THRESHOLD", 10),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@maybachliquor.com"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "maybach-products"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}
}

// IsProduction indique si le serveur tourne en production
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate refuse une production sans SESSION_SECRET ni JWT_SECRET explicites
func (c Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.SessionSecret == "" || c.SessionSecret == devSessionSecret {
		return fmt.Errorf("%w: SESSION_SECRET", ErrMissingSecret)
	}
	if c.JWTSecret == "" || c.JWTSecret == devJWTSecret {
		return fmt.Errorf("%w: JWT_SECRET", ErrMissingSecret)
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
