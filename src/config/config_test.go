package config

import (
	"strings"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RUNBRIDGE_BROKERS", "1.2.3.4:9092,5.6.7.8:9092")
	t.Setenv("RUNBRIDGE_TOPIC", "beamline.documents")
	t.Setenv("RUNBRIDGE_GROUP_ID", "archive")
	t.Setenv("RUNBRIDGE_CODEC", "msgpack")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "1.2.3.4:9092" {
		t.Errorf("Brokers = %v, want two entries starting with 1.2.3.4:9092", cfg.Brokers)
	}
	if cfg.Topic != "beamline.documents" {
		t.Errorf("Topic = %q", cfg.Topic)
	}
	if cfg.GroupID != "archive" {
		t.Errorf("GroupID = %q", cfg.GroupID)
	}
	if cfg.Codec != "msgpack" {
		t.Errorf("Codec = %q", cfg.Codec)
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("RUNBRIDGE_BROKERS", "localhost:9092")
	t.Setenv("RUNBRIDGE_TOPIC", "t")
	t.Setenv("RUNBRIDGE_CODEC", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Codec != "json" {
		t.Errorf("Expected default codec json, got %q", cfg.Codec)
	}
}

func TestLoadFromEnv_MissingBrokers(t *testing.T) {
	t.Setenv("RUNBRIDGE_BROKERS", "")
	t.Setenv("RUNBRIDGE_TOPIC", "t")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error when RUNBRIDGE_BROKERS is unset")
	}
}

func TestLoadFromEnv_BadCodec(t *testing.T) {
	t.Setenv("RUNBRIDGE_BROKERS", "localhost:9092")
	t.Setenv("RUNBRIDGE_TOPIC", "t")
	t.Setenv("RUNBRIDGE_CODEC", "xml")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for unsupported codec")
	}
}

func TestCombineBootstrapServers(t *testing.T) {
	cfg := Map{KeyBootstrapServers: "5.6.7.8:9092"}

	combined := CombineBootstrapServers([]string{"1.2.3.4:9092"}, cfg)
	if got := strings.Join(combined, ","); got != "1.2.3.4:9092,5.6.7.8:9092" {
		t.Errorf("Combined servers = %q, want constructor argument first", got)
	}
}

func TestCombineBootstrapServers_NoConfigEntry(t *testing.T) {
	combined := CombineBootstrapServers([]string{"1.2.3.4:9092"}, Map{})
	if len(combined) != 1 || combined[0] != "1.2.3.4:9092" {
		t.Errorf("Combined servers = %v", combined)
	}
}

func TestRedactedString(t *testing.T) {
	cfg := Map{
		KeyBootstrapServers: "1.2.3.4:9092",
		KeySASLPassword:     "PASSWORD",
		KeySASLUsername:     "alice",
		KeyAcks:             1,
	}

	rendered := cfg.String()

	if strings.Contains(rendered, "PASSWORD") {
		t.Error("Credential value leaked into rendered configuration")
	}
	if strings.Contains(rendered, "alice") {
		t.Error("Credential value leaked into rendered configuration")
	}
	if !strings.Contains(rendered, KeySASLPassword) {
		t.Error("Credential key name should remain visible")
	}
	if !strings.Contains(rendered, MaskToken) {
		t.Error("Mask token missing from rendered configuration")
	}
	if !strings.Contains(rendered, "1.2.3.4:9092") {
		t.Error("Non-credential values should render in plaintext")
	}
}

func TestRedactedDoesNotMutate(t *testing.T) {
	cfg := Map{KeySASLPassword: "secret"}
	_ = cfg.Redacted()

	if cfg[KeySASLPassword] != "secret" {
		t.Error("Redacted must copy, not mutate the original map")
	}
}

func TestMapGetters(t *testing.T) {
	cfg := Map{
		KeyEnableIdempotence: true,
		KeyRequestTimeoutMS:  "5000",
		KeyAcks:              "all",
	}

	if !cfg.GetBool(KeyEnableIdempotence, false) {
		t.Error("GetBool should read a bool value")
	}
	if got := cfg.GetInt(KeyRequestTimeoutMS, 0); got != 5000 {
		t.Errorf("GetInt = %d, want 5000", got)
	}
	if got := cfg.GetString(KeyAcks); got != "all" {
		t.Errorf("GetString = %q, want all", got)
	}
	if got := cfg.GetInt("missing", 7); got != 7 {
		t.Errorf("GetInt default = %d, want 7", got)
	}
}
