// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
	"github.com/sethvargo/go-envconfig"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("rpcsmoke-test", flag.ContinueOnError)
	for _, f := range app.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag %v: %v", f.Names(), err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cli.NewContext(app, set, nil)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	ctx := newContext(t, "--env-file", "")
	cfg, err := loadConfig(ctx, envconfig.MapLookuper(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := pretty.Compare(defaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults differ (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadConfigLayering(t *testing.T) {
	path := writeFile(t, "rpcsmoke.yaml", `
endpoint: http://node:4444
minBlock: 8
retryAttempts: 5
checkTimeout: 45s
clients: [raw, provider]
`)
	env := envconfig.MapLookuper(map[string]string{
		"RPCSMOKE_MIN_BLOCK":    "9",
		"RPCSMOKE_CLIENTS":      "raw,local",
		"RPCSMOKE_MINE_ON_POLL": "true",
		"MIN_BLOCK":             "99", // unprefixed, ignored
	})
	ctx := newContext(t, "--config", path, "--env-file", "", "--min-block", "10")

	cfg, err := loadConfig(ctx, env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := defaultConfig()
	want.Endpoint = "http://node:4444"   // yaml
	want.RetryAttempts = 5               // yaml
	want.CheckTimeout = 45 * time.Second // yaml
	want.Clients = []string{"raw", "local"}
	want.MineOnPoll = true
	want.MinBlock = 10 // flag wins
	if diff := pretty.Compare(want, cfg); diff != "" {
		t.Fatalf("config differs (-want +got):\n%s", diff)
	}
}

func TestLoadConfigUnsetFlagsKeepLowerLayers(t *testing.T) {
	env := envconfig.MapLookuper(map[string]string{"RPCSMOKE_ENDPOINT": "http://env:4444"})
	cfg, err := loadConfig(newContext(t, "--env-file", ""), env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Endpoint != "http://env:4444" {
		t.Fatalf("flag default overrode environment: %s", cfg.Endpoint)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	const key = envPrefix + "REPORT"
	if _, ok := os.LookupEnv(key); ok {
		t.Skipf("%s set in the environment", key)
	}
	t.Cleanup(func() { os.Unsetenv(key) })
	path := writeFile(t, ".env", key+"=/tmp/from-env-file.json\n")

	cfg, err := loadConfig(newContext(t, "--env-file", path), envconfig.OsLookuper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Report != "/tmp/from-env-file.json" {
		t.Fatalf("report = %q, want value from env file", cfg.Report)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{
			name: "unknown yaml field",
			args: []string{"--env-file", "", "--config", writeFile(t, "bad.yaml", "endpiont: http://x\n")},
			want: "endpiont",
		},
		{
			name: "missing config file",
			args: []string{"--env-file", "", "--config", filepath.Join(t.TempDir(), "none.yaml")},
			want: "read config",
		},
		{
			name: "explicit env file missing",
			args: []string{"--env-file", missing},
			want: "load env file",
		},
		{
			name: "bad env value",
			args: []string{"--env-file", ""},
			env:  map[string]string{"RPCSMOKE_MIN_BLOCK": "five"},
			want: "environment",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(newContext(t, tt.args...), envconfig.MapLookuper(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingDefaultEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := loadConfig(newContext(t), envconfig.MapLookuper(nil)); err != nil {
		t.Fatalf("missing default .env should be ignored: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"ws endpoint", func(c *Config) { c.Endpoint = "ws://127.0.0.1:4445" }, "endpoint"},
		{"no host", func(c *Config) { c.Endpoint = "http://" }, "endpoint"},
		{"no clients", func(c *Config) { c.Clients = nil }, "at least one client"},
		{"unknown client", func(c *Config) { c.Clients = []string{"raw", "web3js"} }, `unknown client "web3js"`},
		{"zero chain", func(c *Config) { c.ChainID = 0 }, "chain-id"},
		{"no key", func(c *Config) { c.PrivateKey = "" }, "private-key"},
		{"bad coinbase", func(c *Config) { c.Coinbase = "0x1234" }, "coinbase"},
		{"low min block", func(c *Config) { c.MinBlock = 4 }, "min-block"},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }, "poll-interval"},
		{"zero attempts", func(c *Config) { c.RetryAttempts = 0 }, "retry-attempts"},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, "retry-delay"},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, "rate-limit"},
		{"log format", func(c *Config) { c.LogFormat = "logfmt" }, "log.format"},
		{"verbosity", func(c *Config) { c.Verbosity = 6 }, "verbosity"},
		{"sample rate", func(c *Config) { c.TraceSampleRate = 1.5 }, "trace.sample-rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
