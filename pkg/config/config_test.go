package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
chart:
  perturbation: 5
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Server.Port != 8080 || c.Chart.Model != "periodic" || c.Chart.RetrogradeStep != 0.5 {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if c.Kafka.EventsTopic != "chart.computed" || c.Cache.TTL != 24*time.Hour {
		t.Fatalf("defaults not applied: %+v", c.Kafka)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no environment": "server:\n  port: 80\n",
		"bad model":      "environment: x\nchart:\n  model: vsop87\n",
		"redis no addr":  "environment: x\ncache:\n  redis:\n    enabled: true\n",
		"kafka brokers":  "environment: x\nkafka:\n  enabled: true\n",
		"negative amp":   "environment: x\nchart:\n  perturbation: -1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Server.Port != 9191 {
		t.Fatalf("port = %d", c.Server.Port)
	}
	if strings.Join(c.Kafka.Brokers, ",") != "a:9092,b:9092" {
		t.Fatalf("brokers = %v", c.Kafka.Brokers)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("level = %q", c.Logging.Level)
	}
}

func TestLoadWithEnvBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_PORT", "not-a-port")
	_, err := LoadWithEnv(path)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected env parse error, got %v", err)
	}
}
