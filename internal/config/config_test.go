package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Empty values are treated as unset for the parsed keys.
	for _, key := range []string{"HTTP_TIMEOUT", "WORKER_CONCURRENCY", "JOBS_RETENTION", "OFFLINE_TZ_LOOKUP"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	if cfg.HTTPTimeout != 20*time.Second {
		t.Errorf("HTTPTimeout = %v, want 20s", cfg.HTTPTimeout)
	}
	if cfg.WorkerConcurrency != 8 {
		t.Errorf("WorkerConcurrency = %d, want 8", cfg.WorkerConcurrency)
	}
	if cfg.JobsRetention != 1000 {
		t.Errorf("JobsRetention = %d, want 1000", cfg.JobsRetention)
	}
	if !cfg.OfflineTZLookup {
		t.Error("OfflineTZLookup = false, want true")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GHL_BASE_URL", "https://crm.example.com/")
	t.Setenv("TZ_FIELD_ID", "fld_123")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("WORKER_CONCURRENCY", "3")
	t.Setenv("OFFLINE_TZ_LOOKUP", "false")

	cfg := LoadConfig()

	if cfg.GHLBaseURL != "https://crm.example.com" {
		t.Errorf("GHLBaseURL = %q, want trailing slash trimmed", cfg.GHLBaseURL)
	}
	if cfg.TZFieldID != "fld_123" {
		t.Errorf("TZFieldID = %q, want fld_123", cfg.TZFieldID)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if cfg.WorkerConcurrency != 3 {
		t.Errorf("WorkerConcurrency = %d, want 3", cfg.WorkerConcurrency)
	}
	if cfg.OfflineTZLookup {
		t.Error("OfflineTZLookup = true, want false")
	}
}

func TestLoadConfigInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	t.Setenv("WORKER_CONCURRENCY", "-2")
	t.Setenv("JOBS_RETENTION", "0")

	cfg := LoadConfig()

	if cfg.HTTPTimeout != 20*time.Second {
		t.Errorf("HTTPTimeout = %v, want fallback 20s", cfg.HTTPTimeout)
	}
	if cfg.WorkerConcurrency != 8 {
		t.Errorf("WorkerConcurrency = %d, want fallback 8", cfg.WorkerConcurrency)
	}
	if cfg.JobsRetention != 1000 {
		t.Errorf("JobsRetention = %d, want fallback 1000", cfg.JobsRetention)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{GoogleAPIKey: "g", GHLAPIKey: "k", GHLLocationID: "loc"}
	if w := cfg.Validate(); len(w) != 0 {
		t.Errorf("Validate() = %v, want no warnings", w)
	}

	if w := (&Config{}).Validate(); len(w) != 3 {
		t.Errorf("Validate() on empty config returned %d warnings, want 3", len(w))
	}
}
