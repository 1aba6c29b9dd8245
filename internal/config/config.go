// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Env holds the configuration values for the lambdas. Each lambda only uses
// a subset; required values are asserted per-lambda with MustHave.
type Env struct {
	Region         string        `envconfig:"AWS_REGION" default:"us-east-1"`
	Table          string        `envconfig:"TABLE_NAME"`
	ClaimsBucket   string        `envconfig:"CLAIMS_BUCKET"`
	TopicARN       string        `envconfig:"TOPIC_ARN"`
	AgentID        string        `envconfig:"BEDROCK_AGENT_ID"`
	AgentAliasID   string        `envconfig:"AGENT_ALIAS_ID"`
	VisionModelID  string        `envconfig:"VISION_MODEL_ID" default:"us.anthropic.claude-3-7-sonnet-20250219-v1:0"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"5m"`
	MaxRetries     int           `envconfig:"MAX_RETRY_ATTEMPTS" default:"3"`
}

// Load reads the environment into an Env struct.
func Load() (Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return Env{}, fmt.Errorf("process environment config: %w", err)
	}
	return e, nil
}

// MustHave panics when a required environment value is missing.
func MustHave(name, value string) {
	if value == "" {
		panic(fmt.Errorf("missing env %s", name))
	}
}
