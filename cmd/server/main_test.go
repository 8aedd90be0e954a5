package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/vovakirdan/roomrelay/internal/config"
)

func TestRootFlagsAreBound(t *testing.T) {
	flags := newRootCmd().Flags()
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" {
			return
		}
		if _, ok := config.FlagKeys[f.Name]; !ok {
			t.Errorf("flag --%s has no config key", f.Name)
		}
	})
}

func TestRateLimitFlagAcceptsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cmd := newRootCmd()
	if err := cmd.Flags().Parse([]string{"--config", path, "--rate-limit", "0", "--addr", ":7070"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, _, err := config.Load(nil, path, cmd.Flags())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RateLimitPerMinute != 0 {
		t.Fatalf("--rate-limit 0 ignored: %d", cfg.RateLimitPerMinute)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("--addr ignored: %s", cfg.Addr)
	}
	if cfg.ClientBuffer != config.Default().ClientBuffer {
		t.Fatalf("unset flag changed client buffer: %d", cfg.ClientBuffer)
	}
}
