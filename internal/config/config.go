package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the presence service.
// It is loaded once at startup and passed down explicitly; nothing in
// this package keeps global state.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Minio    MinioConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the Postgres connection string for gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret string
	Expire time.Duration
}

// KafkaConfig configures the presence transition audit stream.
// An empty broker list disables the producer.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// MinioConfig configures avatar object storage. An empty endpoint
// disables uploads.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

func (m MinioConfig) Enabled() bool {
	return m.Endpoint != ""
}

// LoadConfig reads configuration from the environment with sane defaults
// for local development.
func LoadConfig() (*Config, error) {
	viper.SetDefault("PRESENCE_HOST", "")
	viper.SetDefault("PRESENCE_PORT", "8080")
	viper.SetDefault("PRESENCE_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("PRESENCE_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("PRESENCE_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("PRESENCE_JWT_SECRET", "secret")
	viper.SetDefault("PRESENCE_JWT_EXPIRE", "24h")
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "password")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("POSTGRES_DB", "postgres")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_POOL_SIZE", 100)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_AUDIT_TOPIC", "presence-transitions")
	viper.SetDefault("MINIO_ENDPOINT", "")
	viper.SetDefault("MINIO_ACCESS_KEY", "")
	viper.SetDefault("MINIO_SECRET_KEY", "")
	viper.SetDefault("MINIO_BUCKET", "avatars")
	viper.AutomaticEnv()

	jwtExpire, err := time.ParseDuration(viper.GetString("PRESENCE_JWT_EXPIRE"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRESENCE_JWT_EXPIRE: %w", err)
	}

	var brokers []string
	if raw := viper.GetString("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return &Config{
		Server: ServerConfig{
			Host:         viper.GetString("PRESENCE_HOST"),
			Port:         viper.GetString("PRESENCE_PORT"),
			ReadTimeout:  viper.GetDuration("PRESENCE_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("PRESENCE_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("PRESENCE_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetString("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetString("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("PRESENCE_JWT_SECRET"),
			Expire: jwtExpire,
		},
		Kafka: KafkaConfig{
			Brokers:    brokers,
			AuditTopic: viper.GetString("KAFKA_AUDIT_TOPIC"),
		},
		Minio: MinioConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
	}, nil
}
