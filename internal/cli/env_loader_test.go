package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseEnvAssignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		key     string
		value   string
		ok      bool
	}{
		{line: "NODEWATCH_DB_PATH=./db.sqlite", key: "NODEWATCH_DB_PATH", value: "./db.sqlite", ok: true},
		{line: `export NODEWATCH_LISTEN=":5000"`, key: "NODEWATCH_LISTEN", value: ":5000", ok: true},
		{line: "NODEWATCH_FRPS_USER='admin'", key: "NODEWATCH_FRPS_USER", value: "admin", ok: true},
		{line: "# comment", ok: false},
		{line: "", ok: false},
		{line: "no-assignment", ok: false},
	}

	for _, tc := range tests {
		key, value, ok := parseEnvAssignment(tc.line)
		if ok != tc.ok || key != tc.key || value != tc.value {
			t.Fatalf("parseEnvAssignment(%q): got (%q, %q, %v), want (%q, %q, %v)",
				tc.line, key, value, ok, tc.key, tc.value, tc.ok)
		}
	}
}

func TestLoadEnvFromDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "NODEWATCH_LISTEN=:6000\nNODEWATCH_LOG_LEVEL=debug\nOTHER_KEY=x\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NODEWATCH_LISTEN", ":7000")
	t.Setenv("NODEWATCH_LOG_LEVEL", "")
	t.Setenv("OTHER_KEY", "")

	loadEnvFromDotEnv(path)

	if got := os.Getenv("NODEWATCH_LISTEN"); got != ":7000" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
	if got := os.Getenv("NODEWATCH_LOG_LEVEL"); got != "debug" {
		t.Fatalf("expected dotenv value to load, got %q", got)
	}
	if got := os.Getenv("OTHER_KEY"); got != "" {
		t.Fatalf("expected non-NODEWATCH keys to be ignored, got %q", got)
	}
}
