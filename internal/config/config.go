package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"os"
	"strconv"
	"time"
	"warden/internal/types"
)

const (
	defaultBackupSchedule    = "0 2 * * *" // daily at 02:00
	defaultSmokeTestSchedule = "0 4 * * 0" // sundays, two hours after the backup
)

type Config struct {
	// Mode selects the logger configuration
	Mode string `validate:"oneof=development production"`

	ListenAddr string `validate:"required"`

	ServerSSLCertFile, ServerSSLKeyFile string

	// DatabasePath is the production document store and identity directory
	DatabasePath string `validate:"required"`

	// SmokeTestDatabasePath is the disposable environment backups are imported into.
	// Must never point at the production database!
	SmokeTestDatabasePath string `validate:"required,nefield=DatabasePath"`

	// AuthTokenSecret signs and verifies caller tokens of the manual trigger endpoints
	AuthTokenSecret string        `validate:"required,min=32"`
	AuthTokenTTL    time.Duration `validate:"gt=0"`

	BackupSchedule    string `validate:"required"`
	SmokeTestSchedule string `validate:"required"`
	Timezone          string `validate:"required"`

	// PipelineTimeout caps the wall time of a single backup or smoke test invocation
	PipelineTimeout time.Duration `validate:"gt=0"`

	// HeartbeatStaleAfter is how old the last backup may be before health reports it stale
	HeartbeatStaleAfter time.Duration `validate:"gt=0"`

	DirectoryPageSize int `validate:"gt=0,lte=1000"`
	CleanupBatchSize  int `validate:"gt=0,lte=500"`

	Storage types.StorageCredentials
}

// Load reads an optional .env file before building the config from the environment
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = append(files, ".env")
		}
	}

	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, errors.Wrap(err, "failed to load env file")
		}
	}

	cfg := New()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func New() Config {
	return Config{
		Mode:                  getEnv("LOG_MODE", "development"),
		ListenAddr:            getEnv("LISTEN_ADDR", ":3646"),
		ServerSSLCertFile:     os.Getenv("SERVER_SSL_CERT_FILE"),
		ServerSSLKeyFile:      os.Getenv("SERVER_SSL_KEY_FILE"),
		DatabasePath:          getEnv("DATABASE_PATH", "/var/warden/data/warden.db"),
		SmokeTestDatabasePath: getEnv("SMOKE_TEST_DATABASE_PATH", "/var/warden/data/smoke-test.db"),
		AuthTokenSecret:       os.Getenv("AUTH_TOKEN_SECRET"),
		AuthTokenTTL:          getDuration("AUTH_TOKEN_TTL", 12*time.Hour),
		BackupSchedule:        getEnv("BACKUP_SCHEDULE", defaultBackupSchedule),
		SmokeTestSchedule:     getEnv("SMOKE_TEST_SCHEDULE", defaultSmokeTestSchedule),
		Timezone:              getEnv("BACKUP_TIMEZONE", "UTC"),
		PipelineTimeout:       getDuration("PIPELINE_TIMEOUT", 9*time.Minute),
		HeartbeatStaleAfter:   getDuration("HEARTBEAT_STALE_AFTER", 25*time.Hour),
		DirectoryPageSize:     getInt("DIRECTORY_PAGE_SIZE", 1000),
		CleanupBatchSize:      getInt("SMOKE_TEST_CLEANUP_BATCH", 400),
		Storage: types.StorageCredentials{
			Type:          getEnv("STORAGE_TYPE", "File"),
			Endpoint:      os.Getenv("STORAGE_ENDPOINT"),
			AccessKeyID:   os.Getenv("STORAGE_ACCESS_KEY_ID"),
			SecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
			Region:        os.Getenv("STORAGE_REGION"),
			Bucket:        os.Getenv("STORAGE_BUCKET"),
			Secure:        os.Getenv("STORAGE_SECURE") == "true",
			RootDir:       getEnv("STORAGE_ROOT_DIR", "/var/warden/data/backups"),
			RetentionDays: getInt("BACKUP_RETENTION_DAYS", 0),
		},
	}
}

func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if _, err := c.Location(); err != nil {
		return errors.Wrap(err, "invalid BACKUP_TIMEZONE")
	}
	return nil
}

func (c Config) HasTLSConfig() bool {
	return c.ServerSSLCertFile != "" && c.ServerSSLKeyFile != ""
}

// Location is the timezone backup folders are named in and schedules fire in
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
