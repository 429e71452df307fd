package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	MongoUser string `env:"RESTAURANT_DB_USER,required"`
	MongoPass string `env:"RESTAURANT_DB_PASS"`
	MongoHost string `env:"RESTAURANT_DB_HOST,required"`

	// Optional Secret Manager resource name, e.g.
	// projects/p/secrets/restaurant-db-pass/versions/latest.
	// When set it overrides RESTAURANT_DB_PASS.
	MongoPassSecret string `env:"RESTAURANT_DB_PASS_SECRET"`

	RedisAddr string `env:"RESTAURANT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"RESTAURANT_REDIS_PASS"`
	RedisDB   int    `env:"RESTAURANT_REDIS_DB" envDefault:"0"`

	AMQPUser string `env:"RBMQ_RESTAURANT_USER,required"`
	AMQPPass string `env:"RBMQ_RESTAURANT_PASS,required"`
	AMQPHost string `env:"AMQP_SERVER_URI,required"`
}

// LoadConfig reads configuration from the environment, layering in a
// .env file when one exists next to the binary.
func LoadConfig(ctx context.Context) (*Config, error) {

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using process environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.MongoPassSecret != "" {
		pass, err := fetchSecret(ctx, cfg.MongoPassSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch database password: %w", err)
		}
		cfg.MongoPass = pass
	}

	return &cfg, nil
}

func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb://%s:%s@%s/db?authSource=admin",
		c.MongoUser, c.MongoPass, c.MongoHost)
}

func (c *Config) AMQPURI() string {
	return fmt.Sprintf("amqp://%s:%s@%s", c.AMQPUser, c.AMQPPass, c.AMQPHost)
}

func fetchSecret(ctx context.Context, name string) (string, error) {

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}
