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
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/rsksmart/rpcsmoke/clients"
)

// envPrefix prefixes every environment override, e.g. RPCSMOKE_ENDPOINT.
const envPrefix = "RPCSMOKE_"

// Config holds the rpcsmoke run configuration. Values are layered: defaults, the
// YAML file, the .env file and environment, then explicitly set flags.
type Config struct {
	Endpoint      string   `yaml:"endpoint" env:"ENDPOINT,overwrite"`
	Clients       []string `yaml:"clients" env:"CLIENTS,overwrite"` // access paths to use
	ChainID       uint64   `yaml:"chainId" env:"CHAIN_ID,overwrite"`
	NetworkID     uint64   `yaml:"networkId" env:"NETWORK_ID,overwrite"`
	PrivateKey    string   `yaml:"privateKey" env:"PRIVATE_KEY,overwrite"`
	Coinbase      string   `yaml:"coinbase" env:"COINBASE,overwrite"`
	ClientVersion string   `yaml:"clientVersion" env:"CLIENT_VERSION,overwrite"`
	ArtifactPath  string   `yaml:"artifact" env:"ARTIFACT,overwrite"` // empty uses the embedded contract
	MinBlock      uint64   `yaml:"minBlock" env:"MIN_BLOCK,overwrite"`

	RequestTimeout   time.Duration `yaml:"requestTimeout" env:"REQUEST_TIMEOUT,overwrite"`
	CheckTimeout     time.Duration `yaml:"checkTimeout" env:"CHECK_TIMEOUT,overwrite"`
	ConnectTimeout   time.Duration `yaml:"connectTimeout" env:"CONNECT_TIMEOUT,overwrite"`
	InclusionTimeout time.Duration `yaml:"inclusionTimeout" env:"INCLUSION_TIMEOUT,overwrite"`
	PollInterval     time.Duration `yaml:"pollInterval" env:"POLL_INTERVAL,overwrite"`
	MineOnPoll       bool          `yaml:"mineOnPoll" env:"MINE_ON_POLL,overwrite"`

	RetryAttempts int           `yaml:"retryAttempts" env:"RETRY_ATTEMPTS,overwrite"`
	RetryDelay    time.Duration `yaml:"retryDelay" env:"RETRY_DELAY,overwrite"`
	RateLimit     float64       `yaml:"rateLimit" env:"RATE_LIMIT,overwrite"` // requests per second, 0 = unlimited

	Report string `yaml:"report" env:"REPORT,overwrite"` // JSON report path

	LogFormat string `yaml:"logFormat" env:"LOG_FORMAT,overwrite"`
	LogFile   string `yaml:"logFile" env:"LOG_FILE,overwrite"`
	Verbosity int    `yaml:"verbosity" env:"VERBOSITY,overwrite"`

	OTLPEndpoint    string  `yaml:"otlpEndpoint" env:"OTLP_ENDPOINT,overwrite"`
	TraceSampleRate float64 `yaml:"traceSampleRate" env:"TRACE_SAMPLE_RATE,overwrite"`
}

func defaultConfig() *Config {
	return &Config{
		Endpoint:         "http://127.0.0.1:4444",
		Clients:          []string{clients.RawID, clients.ProviderID, clients.SDKID, clients.LocalID},
		ChainID:          33,
		NetworkID:        33,
		PrivateKey:       "0xc85ef7d79691fe79573b1a7064c19c1a9819ebdbd1faaab1a8ec92344438aaf4",
		Coinbase:         "0xec4ddeb4380ad69b3e509baad9f158cdf4e4681d",
		ClientVersion:    "RskJ",
		MinBlock:         5,
		RequestTimeout:   10 * time.Second,
		CheckTimeout:     30 * time.Second,
		ConnectTimeout:   2 * time.Minute,
		InclusionTimeout: time.Minute,
		PollInterval:     time.Second,
		RetryAttempts:    3,
		RetryDelay:       500 * time.Millisecond,
		LogFormat:        "terminal",
		Verbosity:        3,
		TraceSampleRate:  1,
	}
}

// loadConfig layers every configuration source. lookup resolves environment
// variables without the prefix.
func loadConfig(c *cli.Context, lookup envconfig.Lookuper) (*Config, error) {
	cfg := defaultConfig()
	if path := c.String(configFileFlag.Name); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	if err := loadEnvFile(c.String(envFileFlag.Name), c.IsSet(envFileFlag.Name)); err != nil {
		return nil, err
	}
	if err := envconfig.ProcessWith(c.Context, cfg, envconfig.PrefixLookuper(envPrefix, lookup)); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	applyFlags(c, cfg)
	return cfg, nil
}

func (cfg *Config) loadYAML(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadEnvFile exports the variables of a .env file. A missing file is only an
// error when it was asked for explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// applyFlags copies the flags given on the command line over cfg.
func applyFlags(c *cli.Context, cfg *Config) {
	set := func(name string, apply func()) {
		if c.IsSet(name) {
			apply()
		}
	}
	set(endpointFlag.Name, func() { cfg.Endpoint = c.String(endpointFlag.Name) })
	set(clientsFlag.Name, func() { cfg.Clients = c.StringSlice(clientsFlag.Name) })
	set(chainIDFlag.Name, func() { cfg.ChainID = c.Uint64(chainIDFlag.Name) })
	set(networkIDFlag.Name, func() { cfg.NetworkID = c.Uint64(networkIDFlag.Name) })
	set(privateKeyFlag.Name, func() { cfg.PrivateKey = c.String(privateKeyFlag.Name) })
	set(coinbaseFlag.Name, func() { cfg.Coinbase = c.String(coinbaseFlag.Name) })
	set(clientVersionFlag.Name, func() { cfg.ClientVersion = c.String(clientVersionFlag.Name) })
	set(artifactFlag.Name, func() { cfg.ArtifactPath = c.String(artifactFlag.Name) })
	set(minBlockFlag.Name, func() { cfg.MinBlock = c.Uint64(minBlockFlag.Name) })
	set(requestTimeoutFlag.Name, func() { cfg.RequestTimeout = c.Duration(requestTimeoutFlag.Name) })
	set(checkTimeoutFlag.Name, func() { cfg.CheckTimeout = c.Duration(checkTimeoutFlag.Name) })
	set(connectTimeoutFlag.Name, func() { cfg.ConnectTimeout = c.Duration(connectTimeoutFlag.Name) })
	set(inclusionTimeoutFlag.Name, func() { cfg.InclusionTimeout = c.Duration(inclusionTimeoutFlag.Name) })
	set(pollIntervalFlag.Name, func() { cfg.PollInterval = c.Duration(pollIntervalFlag.Name) })
	set(mineOnPollFlag.Name, func() { cfg.MineOnPoll = c.Bool(mineOnPollFlag.Name) })
	set(retryAttemptsFlag.Name, func() { cfg.RetryAttempts = c.Int(retryAttemptsFlag.Name) })
	set(retryDelayFlag.Name, func() { cfg.RetryDelay = c.Duration(retryDelayFlag.Name) })
	set(rateLimitFlag.Name, func() { cfg.RateLimit = c.Float64(rateLimitFlag.Name) })
	set(reportFlag.Name, func() { cfg.Report = c.String(reportFlag.Name) })
	set(logFormatFlag.Name, func() { cfg.LogFormat = c.String(logFormatFlag.Name) })
	set(logFileFlag.Name, func() { cfg.LogFile = c.String(logFileFlag.Name) })
	set(verbosityFlag.Name, func() { cfg.Verbosity = c.Int(verbosityFlag.Name) })
	set(otlpEndpointFlag.Name, func() { cfg.OTLPEndpoint = c.String(otlpEndpointFlag.Name) })
	set(traceSampleRateFlag.Name, func() { cfg.TraceSampleRate = c.Float64(traceSampleRateFlag.Name) })
}

// Validate checks the configuration before anything touches the node.
func (cfg *Config) Validate() error {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint must be an http(s) URL, got %q", cfg.Endpoint)
	}
	if len(cfg.Clients) == 0 {
		return errors.New("at least one client is required")
	}
	known := []string{clients.RawID, clients.ProviderID, clients.SDKID, clients.LocalID}
	for _, id := range cfg.Clients {
		if !slices.Contains(known, id) {
			return fmt.Errorf("unknown client %q (known: %s)", id, strings.Join(known, ", "))
		}
	}
	if cfg.ChainID == 0 {
		return errors.New("chain-id must be > 0")
	}
	if cfg.PrivateKey == "" {
		return errors.New("private-key is required")
	}
	if !common.IsHexAddress(cfg.Coinbase) {
		return fmt.Errorf("coinbase %q is not an address", cfg.Coinbase)
	}
	// The catalog looks up blocks 1, 2 and 4 and needs one more on top.
	if cfg.MinBlock < 5 {
		return fmt.Errorf("min-block must be >= 5, got %d", cfg.MinBlock)
	}
	for name, d := range map[string]time.Duration{
		"request-timeout":   cfg.RequestTimeout,
		"check-timeout":     cfg.CheckTimeout,
		"connect-timeout":   cfg.ConnectTimeout,
		"inclusion-timeout": cfg.InclusionTimeout,
		"poll-interval":     cfg.PollInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	if cfg.RetryAttempts < 1 {
		return errors.New("retry-attempts must be >= 1")
	}
	if cfg.RetryDelay < 0 {
		return errors.New("retry-delay must be >= 0")
	}
	if cfg.RateLimit < 0 {
		return errors.New("rate-limit must be >= 0")
	}
	if cfg.LogFormat != "terminal" && cfg.LogFormat != "json" {
		return fmt.Errorf("log.format must be terminal or json, got %q", cfg.LogFormat)
	}
	if cfg.Verbosity < 0 || cfg.Verbosity > 5 {
		return fmt.Errorf("verbosity must be within 0..5, got %d", cfg.Verbosity)
	}
	if cfg.TraceSampleRate < 0 || cfg.TraceSampleRate > 1 {
		return fmt.Errorf("trace.sample-rate must be within 0..1, got %v", cfg.TraceSampleRate)
	}
	return nil
}
