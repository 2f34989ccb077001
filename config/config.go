package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// JWTConfig holds the signing parameters for access tokens. Loaded once at
// startup and treated as immutable afterwards.
type JWTConfig struct {
	SecretKey      string        `mapstructure:"secretKey"`
	Algorithm      string        `mapstructure:"algorithm"`
	AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
}

// EmailConfig holds the outbound email (SendGrid) credentials.
type EmailConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Sender string `mapstructure:"sender"`
}

// StorageConfig holds the S3 credentials for attachment uploads.
type StorageConfig struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	BaseURL         string `mapstructure:"baseURL"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			Password string `mapstructure:"password"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Email   EmailConfig   `mapstructure:"email"`
	Storage StorageConfig `mapstructure:"storage"`
	// AdminToken is a reference token for documentation and testing only.
	AdminToken string `mapstructure:"adminToken"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&config)
	return config, nil
}

// applyEnvOverrides layers secrets from the environment over the file-based
// config so credentials never live in config.yml.
func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"DB_HOST", &cfg.Repositories.Postgres.Host},
		{"DB_PORT", &cfg.Repositories.Postgres.Port},
		{"DB_USER", &cfg.Repositories.Postgres.Username},
		{"DB_PASS", &cfg.Repositories.Postgres.Password},
		{"DB_NAME", &cfg.Repositories.Postgres.DB},
		{"JWT_SECRET", &cfg.JWT.SecretKey},
		{"JWT_ALG", &cfg.JWT.Algorithm},
		{"SG_API_KEY", &cfg.Email.APIKey},
		{"EMAIL_SENDER", &cfg.Email.Sender},
		{"AWS_ACCESS_KEY_ID", &cfg.Storage.AccessKeyID},
		{"AWS_SECRET_ACCESS_KEY", &cfg.Storage.SecretAccessKey},
		{"S3_BUCKET", &cfg.Storage.Bucket},
		{"S3_BASE_URL", &cfg.Storage.BaseURL},
		{"ADMIN_TOKEN", &cfg.AdminToken},
	}
	for _, o := range overrides {
		if val := os.Getenv(o.env); val != "" {
			*o.dst = val
		}
	}
}
