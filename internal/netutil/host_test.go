package netutil

import "testing"

func TestNormalizeHost(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"node1.lunes.host":        "node1.lunes.host",
		"  Node1.Lunes.Host  ":    "node1.lunes.host",
		"node1.lunes.host:8080":   "node1.lunes.host",
		"node1.lunes.host.":       "node1.lunes.host",
		"[2001:db8::1]:443":       "2001:db8::1",
		"2001:db8::1":             "2001:db8::1",
		"":                        "",
		"   ":                     "",
		"node1.lunes.host:notnum": "node1.lunes.host",
	}

	for in, want := range tests {
		if got := NormalizeHost(in); got != want {
			t.Fatalf("NormalizeHost(%q): got %q, want %q", in, got, want)
		}
	}
}
