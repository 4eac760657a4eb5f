package config

import (
	"testing"
	"time"
)

func TestNormalizeDomainHost(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"example.com":                "example.com",
		"https://example.com/path":   "example.com",
		"http://EXAMPLE.com:443/abc": "example.com",
		"  sub.example.com.  ":       "sub.example.com",
	}

	for in, want := range tests {
		if got := normalizeDomainHost(in); got != want {
			t.Fatalf("normalizeDomainHost(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestParseServerFlagsDefaults(t *testing.T) {
	t.Setenv("NODEWATCH_SWEEP_INTERVAL", "")
	t.Setenv("NODEWATCH_STALENESS_WINDOW", "")

	cfg, err := ParseServerFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SweepInterval != time.Minute {
		t.Fatalf("expected 1m sweep interval, got %s", cfg.SweepInterval)
	}
	if cfg.StalenessWindow != 10*time.Minute {
		t.Fatalf("expected 10m staleness window, got %s", cfg.StalenessWindow)
	}
	if cfg.TLSMode != "off" {
		t.Fatalf("expected tls off by default, got %q", cfg.TLSMode)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("expected 1MiB body limit, got %d", cfg.MaxBodyBytes)
	}
}

func TestParseServerFlagsBodyAndTimeoutOverrides(t *testing.T) {
	t.Setenv("NODEWATCH_MAX_BODY_BYTES", "4096")
	t.Setenv("NODEWATCH_REQUEST_TIMEOUT", "3s")

	cfg, err := ParseServerFlags([]string{"--watch-push-interval", "2s"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxBodyBytes != 4096 {
		t.Fatalf("expected 4096 body limit, got %d", cfg.MaxBodyBytes)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("expected 3s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.WatchPushInterval != 2*time.Second {
		t.Fatalf("expected 2s watch push interval, got %s", cfg.WatchPushInterval)
	}

	if _, err := ParseServerFlags([]string{"--max-body-bytes", "0"}); err == nil {
		t.Fatal("expected error for zero body limit")
	}
}

func TestParseServerFlagsEnvDurations(t *testing.T) {
	t.Setenv("NODEWATCH_SWEEP_INTERVAL", "30s")
	t.Setenv("NODEWATCH_STALENESS_WINDOW", "5m")

	cfg, err := ParseServerFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Fatalf("expected 30s sweep interval, got %s", cfg.SweepInterval)
	}
	if cfg.StalenessWindow != 5*time.Minute {
		t.Fatalf("expected 5m staleness window, got %s", cfg.StalenessWindow)
	}
}

func TestParseServerFlagsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "window shorter than sweep",
			args: []string{"--sweep-interval", "1m", "--staleness-window", "30s"},
		},
		{
			name: "zero sweep interval",
			args: []string{"--sweep-interval", "0s"},
		},
		{
			name: "auto tls without domain",
			args: []string{"--tls-mode", "auto"},
		},
		{
			name: "unknown tls mode",
			args: []string{"--tls-mode", "wildcard"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseServerFlags(tc.args); err == nil {
				t.Fatalf("expected error for %v", tc.args)
			}
		})
	}
}
