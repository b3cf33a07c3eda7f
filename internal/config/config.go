package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Auth     AuthConfig
	Session  SessionConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Display  DisplayConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// APIConfig points at the Inari REST API
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Mock    bool
}

type AuthConfig struct {
	Provider string
	JWT      JWTConfig
	Local    LocalAuthConfig
	OIDC     OIDCConfig
}

type JWTConfig struct {
	Secret     string
	Expiration string
}

type LocalAuthConfig struct {
	Username     string
	PasswordHash string
}

type OIDCConfig struct {
	Domain       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Audience     string
}

type SessionConfig struct {
	Store      string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StorageConfig struct {
	Path      string
	Provider  string
	URLTTL    time.Duration
	SeaweedFS SeaweedFSConfig
	S3        S3Config
}

type SeaweedFSConfig struct {
	FilerURL string
}

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	ForcePathStyle  bool
}

type DisplayConfig struct {
	Timezone string
	PageSize int
}

const (
	AuthProviderNone  = "none"
	AuthProviderLocal = "local"
	AuthProviderOIDC  = "oidc"

	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

// Load reads .env (when present) and the process environment
func Load() (*Config, error) {
	config, err := read()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadStorage reads only the storage settings. Tools that never serve
// pages use it so they do not need auth or session settings.
func LoadStorage() (StorageConfig, error) {
	config, err := read()
	if err != nil {
		return StorageConfig{}, err
	}
	return config.Storage, nil
}

func read() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	env := getEnv("ENV", "development")
	dev := env == "development"

	defaultAuth := AuthProviderLocal
	if dev {
		defaultAuth = AuthProviderNone
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  env,
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8090/api"), "/"),
			Timeout: getEnvAsDuration("API_TIMEOUT", time.Second),
			Mock:    getEnvAsBool("API_MOCK", dev),
		},
		Auth: AuthConfig{
			Provider: strings.ToLower(getEnv("AUTH_PROVIDER", defaultAuth)),
			JWT: JWTConfig{
				Secret:     getEnv("JWT_SECRET", ""),
				Expiration: getEnv("JWT_EXPIRATION", "24h"),
			},
			Local: LocalAuthConfig{
				Username:     getEnv("AUTH_USERNAME", ""),
				PasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
			},
			OIDC: OIDCConfig{
				Domain:       getEnv("OIDC_DOMAIN", ""),
				ClientID:     getEnv("OIDC_CLIENT_ID", ""),
				ClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("OIDC_REDIRECT_URL", ""),
				Audience:     getEnv("OIDC_AUDIENCE", ""),
			},
		},
		Session: SessionConfig{
			Store:      strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
			CookieName: getEnv("SESSION_COOKIE", "inari_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			Secure:     getEnvAsBool("SESSION_SECURE", !dev),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "inari_web"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Path:     getEnv("STORAGE_PATH", "./storage/thumbnails"),
			Provider: strings.ToLower(getEnv("STORAGE_PROVIDER", defaultStorage(dev))),
			URLTTL:   getEnvAsDuration("STORAGE_URL_TTL", 15*time.Minute),
			SeaweedFS: SeaweedFSConfig{
				FilerURL: getEnv("SEAWEEDFS_FILER_URL", "http://localhost:8888"),
			},
			S3: S3Config{
				Region:          getEnv("AWS_REGION", "eu-west-2"),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				BucketName:      getEnv("AWS_BUCKET_NAME", ""),
				Endpoint:        getEnv("AWS_ENDPOINT", ""),
				ForcePathStyle:  getEnvAsBool("AWS_FORCE_PATH_STYLE", false),
			},
		},
		Display: DisplayConfig{
			Timezone: getEnv("DISPLAY_TIMEZONE", "UTC"),
			PageSize: getEnvAsInt("GALLERY_PAGE_SIZE", 40),
		},
	}

	return config, nil
}

func defaultStorage(dev bool) string {
	if dev {
		return "placeholder"
	}
	return "local"
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Validate checks combinations that cannot work at runtime
func (c *Config) Validate() error {
	switch c.Auth.Provider {
	case AuthProviderNone:
		if !c.IsDevelopment() {
			return fmt.Errorf("auth provider %q is only allowed in development", AuthProviderNone)
		}
	case AuthProviderLocal:
		if c.Auth.Local.Username == "" || c.Auth.Local.PasswordHash == "" {
			return fmt.Errorf("local auth requires AUTH_USERNAME and AUTH_PASSWORD_HASH")
		}
		if c.Auth.JWT.Secret == "" {
			return fmt.Errorf("local auth requires JWT_SECRET")
		}
		if _, err := c.Auth.JWT.Duration(); err != nil {
			return err
		}
	case AuthProviderOIDC:
		if c.Auth.OIDC.Domain == "" || c.Auth.OIDC.ClientID == "" || c.Auth.OIDC.RedirectURL == "" {
			return fmt.Errorf("oidc auth requires OIDC_DOMAIN, OIDC_CLIENT_ID and OIDC_REDIRECT_URL")
		}
	default:
		return fmt.Errorf("unsupported auth provider: %s", c.Auth.Provider)
	}

	switch c.Session.Store {
	case SessionStoreMemory, SessionStorePostgres:
	default:
		return fmt.Errorf("unsupported session store: %s", c.Session.Store)
	}

	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	return nil
}

// Location returns the display timezone
func (d DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Duration parses the JWT expiration
func (j JWTConfig) Duration() (time.Duration, error) {
	d, err := time.ParseDuration(j.Expiration)
	if err != nil {
		return 0, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
	}
	return d, nil
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
