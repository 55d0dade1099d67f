package config

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" || cfg.GRPCAddress() != "localhost:50051" {
		t.Errorf("addresses = %q %q", cfg.HTTPAddr, cfg.GRPCAddress())
	}
	if cfg.Timezone != "America/Sao_Paulo" || cfg.History.Backend != "log" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Publisher.BufferSize != 1024 || cfg.Publisher.RetryBackoff != 500*time.Millisecond {
		t.Errorf("publisher = %+v", cfg.Publisher)
	}
}

func TestLoadEnvironmentFallback(t *testing.T) {
	t.Setenv("FILA_GRPC_PORT", "6000")
	t.Setenv("FILA_HISTORY_BACKEND", "kafka")
	t.Setenv("FILA_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("FILA_RATE_LIMIT", "true")
	t.Setenv("FILA_RATE_RPS", "2.5")

	cfg, err := Load([]string{"-kafka-topic", "served"}, io.Discard)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GRPCPort != 6000 || cfg.History.Backend != "kafka" || cfg.History.KafkaTopic != "served" {
		t.Errorf("cfg = %+v", cfg)
	}
	if strings.Join(cfg.History.KafkaBrokers, "|") != "k1:9092|k2:9092" {
		t.Errorf("brokers = %v", cfg.History.KafkaBrokers)
	}
	if !cfg.RateLimitEnabled || cfg.RateLimitRPS != 2.5 {
		t.Errorf("rate limit = %v %v", cfg.RateLimitEnabled, cfg.RateLimitRPS)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("FILA_LOG_LEVEL", "warn")
	cfg, err := Load([]string{"-log-level", "debug"}, io.Discard)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown backend", []string{"-history-backend", "s3"}},
		{"zero rps", []string{"-rate-limit", "-rate-rps", "0"}},
		{"negative burst", []string{"-rate-limit", "-rate-burst", "-1"}},
		{"bad log level", []string{"-log-level", "loud"}},
		{"bad log format", []string{"-log-format", "xml"}},
		{"bad port", []string{"-port", "70000"}},
		{"bad timezone", []string{"-timezone", "Mars/Olympus"}},
		{"zero workers", []string{"-history-workers", "0"}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args, io.Discard); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}

func TestBackendAliasesAccepted(t *testing.T) {
	for _, b := range []string{"AWS", "gcp", "Postgres"} {
		if _, err := Load([]string{"-history-backend", b}, io.Discard); err != nil {
			t.Errorf("backend %s: %v", b, err)
		}
	}
}

func TestHelpSkipsValidation(t *testing.T) {
	var out strings.Builder
	cfg, err := Load([]string{"-h", "-history-backend", "s3"}, &out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.ShowHelp || !strings.Contains(out.String(), "history-backend") {
		t.Fatalf("help not printed: %q", out.String())
	}
}
