package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPSDECK_CONFIG", path)
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("OPSDECK_CONFIG", filepath.Join(t.TempDir(), "nope.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Port != 4820 || cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("gateway defaults = %+v", cfg.Gateway)
	}
	if cfg.Agents.Binary != "agent" {
		t.Errorf("agents binary = %q", cfg.Agents.Binary)
	}
	if cfg.Events.Topic != "opsdeck.events" {
		t.Errorf("events topic = %q", cfg.Events.Topic)
	}
}

func TestLoadFromFile(t *testing.T) {
	writeConfig(t, `{
		"gateway": {"host": "0.0.0.0", "port": 9000},
		"slack": {"token": "xoxb-1", "channel": "#warroom"}
	}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Host != "0.0.0.0" || cfg.Gateway.Port != 9000 {
		t.Errorf("gateway = %+v", cfg.Gateway)
	}
	if cfg.Slack.Channel != "#warroom" {
		t.Errorf("slack channel = %q", cfg.Slack.Channel)
	}
}

func TestLoadSubstitutesEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_SLACK_TOKEN", "xoxb-secret")
	writeConfig(t, `{"slack": {"token": "${TEST_SLACK_TOKEN}", "channel": "#ops"}}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Slack.Token != "xoxb-secret" {
		t.Errorf("token = %q, placeholder not resolved", cfg.Slack.Token)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	writeConfig(t, `{"gateway": {"port": 9000}}`)
	t.Setenv("OPSDECK_GATEWAY_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Port != 9100 {
		t.Errorf("port = %d, env must win over file", cfg.Gateway.Port)
	}
}

func TestLoadRejectsMalformedEnvOverride(t *testing.T) {
	writeConfig(t, `{}`)
	t.Setenv("OPSDECK_GATEWAY_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric port override")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	writeConfig(t, `{not json`)

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("OPSDECK_CONFIG", filepath.Join(t.TempDir(), "sub", "config.json"))

	cfg := DefaultConfig()
	cfg.Gateway.Port = 4888
	cfg.Sheets.URL = "https://sheets.example.test/append"
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Gateway.Port != 4888 || loaded.Sheets.URL != cfg.Sheets.URL {
		t.Errorf("round trip = %+v", loaded)
	}
}
