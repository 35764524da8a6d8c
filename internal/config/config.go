// Package config provides configuration types and loading for opsdeck.
package config

import (
	"os"
	"path/filepath"
)

// Config is the root configuration struct.
// Top-level groups: Paths, Agents, Gateway, Sheets, Mail, Slack, Events.
type Config struct {
	Paths   PathsConfig   `json:"paths"`
	Agents  AgentsConfig  `json:"agents"`
	Gateway GatewayConfig `json:"gateway"`
	Sheets  SheetsConfig  `json:"sheets"`
	Mail    MailConfig    `json:"mail"`
	Slack   SlackConfig   `json:"slack"`
	Events  EventsConfig  `json:"events"`
}

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	State     string `json:"state" envconfig:"STATE"`
	BillingDB string `json:"billingDb" envconfig:"BILLING_DB"`
}

// AgentsConfig configures the agent CLI used for rosters and dispatch.
type AgentsConfig struct {
	Binary string `json:"binary" envconfig:"BINARY"`
}

// GatewayConfig configures the dashboard HTTP server.
type GatewayConfig struct {
	Host string `json:"host" envconfig:"HOST"`
	Port int    `json:"port" envconfig:"PORT"`
}

// SheetsConfig configures the spreadsheet webhook mirror.
type SheetsConfig struct {
	URL   string `json:"url" envconfig:"URL"`
	Token string `json:"token" envconfig:"TOKEN"`
}

// MailConfig configures the outbound e-mail relay.
type MailConfig struct {
	BaseURL string `json:"baseUrl" envconfig:"BASE_URL"`
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	From    string `json:"from" envconfig:"FROM"`
}

// SlackConfig configures the war-room Slack mirror.
type SlackConfig struct {
	Token   string `json:"token" envconfig:"TOKEN"`
	Channel string `json:"channel" envconfig:"CHANNEL"`
}

// EventsConfig configures the Kafka event stream. Empty brokers disable it.
type EventsConfig struct {
	Brokers string `json:"brokers" envconfig:"BROKERS"`
	Topic   string `json:"topic" envconfig:"TOPIC"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ConfigDir)
	return &Config{
		Paths: PathsConfig{
			State:     filepath.Join(base, "state.json"),
			BillingDB: filepath.Join(base, "billing.db"),
		},
		Agents: AgentsConfig{
			Binary: "agent",
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 4820,
		},
		Events: EventsConfig{
			Topic: "opsdeck.events",
		},
	}
}
