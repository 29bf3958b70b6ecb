package main

import "testing"

func TestResolveConfigPath(t *testing.T) {
	cases := []struct {
		name    string
		flagVal string
		env     string
		want    string
	}{
		{"flag wins over env", "/etc/webui.yaml", "/env/webui.yaml", "/etc/webui.yaml"},
		{"env when no flag", "", "/env/webui.yaml", "/env/webui.yaml"},
		{"default when neither", "", "", defaultConfigPath},
		{"blank env ignored", "", "   ", defaultConfigPath},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DISCORDNOTIFY_CONFIG", tc.env)
			if got := resolveConfigPath(tc.flagVal); got != tc.want {
				t.Fatalf("resolveConfigPath(%q) = %q, want %q", tc.flagVal, got, tc.want)
			}
		})
	}
}

func TestResolveAddr(t *testing.T) {
	cases := []struct {
		name    string
		flagVal string
		env     string
		want    string
	}{
		{"flag wins over env", "127.0.0.1:9000", "0.0.0.0:8080", "127.0.0.1:9000"},
		{"env when no flag", "", "0.0.0.0:8080", "0.0.0.0:8080"},
		{"empty means config file", "", "", ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DISCORDNOTIFY_ADDR", tc.env)
			if got := resolveAddr(tc.flagVal); got != tc.want {
				t.Fatalf("resolveAddr(%q) = %q, want %q", tc.flagVal, got, tc.want)
			}
		})
	}
}

func TestIsLoopback(t *testing.T) {
	t.Parallel()

	cases := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:8080", true},
		{"localhost:8080", true},
		{"[::1]:8080", true},
		{"0.0.0.0:8080", false},
		{"192.168.1.5:8080", false},
		// Empty host binds every interface.
		{":8080", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.addr, func(t *testing.T) {
			t.Parallel()
			if got := isLoopback(tc.addr); got != tc.want {
				t.Fatalf("isLoopback(%q) = %v, want %v", tc.addr, got, tc.want)
			}
		})
	}
}
