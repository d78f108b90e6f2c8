package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all runtime configuration for the notifier service.
type Config struct {
	Env  string `env:"ENV,default=dev"`
	Port string `env:"PORT,default=8086"`

	ProjectID       string `env:"GCP_PROJECT_ID"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	WebAppURL       string `env:"WEB_APP_URL"`

	AMQPURL         string `env:"AMQP_URL"`
	AMQPExchange    string `env:"AMQP_EXCHANGE,default=chat.events"`
	TriggerQueue    string `env:"AMQP_TRIGGER_QUEUE,default=chat-notifier.triggers"`
	AuditRoutingKey string `env:"AUDIT_ROUTING_KEY,default=audit.chat-notifier"`

	ServiceName  string `env:"SERVICE_NAME,default=chat-notifier"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
	DebugRoutes  bool   `env:"DEBUG_ROUTES"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (Config, error) {
	var config Config
	if err := envconfig.Process(ctx, &config); err != nil {
		return Config{}, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}
