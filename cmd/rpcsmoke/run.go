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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/sethvargo/go-envconfig"
	"github.com/urfave/cli/v2"

	"github.com/rsksmart/rpcsmoke/clients"
	"github.com/rsksmart/rpcsmoke/conformance"
	"github.com/rsksmart/rpcsmoke/fixture"
	"github.com/rsksmart/rpcsmoke/jsonrpc"
	"github.com/rsksmart/rpcsmoke/retry"
	"github.com/rsksmart/rpcsmoke/smoke"
	"github.com/rsksmart/rpcsmoke/telemetry"
)

// Exit codes.
const (
	exitFailed = 1 // at least one check failed
	exitConfig = 2 // bad configuration or unreachable node
)

// buildSuite validates the catalog. A catalog the suite rejects is a
// configuration error.
func buildSuite(checker *conformance.Checker, checks []*conformance.Check, results *conformance.Results) (*conformance.Suite, error) {
	suite, err := conformance.NewSuite(checker, checks, results)
	if err != nil {
		return nil, cli.Exit(fmt.Errorf("invalid catalog: %w", err), exitConfig)
	}
	return suite, nil
}

func runSmoke(c *cli.Context) error {
	cfg, err := loadConfig(c, envconfig.OsLookuper())
	if err != nil {
		return cli.Exit(err, exitConfig)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Errorf("invalid config: %w", err), exitConfig)
	}
	logs := setupLogging(cfg)
	defer logs.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:   cfg.OTLPEndpoint,
		SampleRate: cfg.TraceSampleRate,
		Version:    version,
	})
	if err != nil {
		return cli.Exit(err, exitConfig)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("Failed to flush traces", "err", err)
		}
	}()

	env, transport, closeClients, err := buildEnv(ctx, cfg)
	if err != nil {
		return cli.Exit(err, exitConfig)
	}
	defer closeClients()

	log.Info("Waiting for node", "endpoint", cfg.Endpoint, "timeout", cfg.ConnectTimeout)
	clientVersion, err := waitForRPC(ctx, transport, cfg.ConnectTimeout, cfg.PollInterval)
	if err != nil {
		return cli.Exit(err, exitConfig)
	}
	log.Info("Node is up", "version", clientVersion)

	checker := conformance.NewChecker(retry.Policy{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay}, cfg.CheckTimeout)
	results := conformance.NewResults(os.Stdout)
	results.Endpoint = cfg.Endpoint
	suite, err := buildSuite(checker, smoke.Build(env), results)
	if err != nil {
		return err
	}
	suite.Run(ctx)
	results.Print()

	if cfg.Report != "" {
		if err := results.WriteJSON(cfg.Report); err != nil {
			log.Error("Failed to write report", "path", cfg.Report, "err", err)
		} else {
			log.Info("Report written", "path", cfg.Report)
		}
	}
	m := conformance.Metrics()
	log.Debug("Run metrics", "checks", m.Checks, "invocations", m.Invocations, "retries", m.Retries,
		"pathErrors", m.PathErrors, "mismatches", m.Mismatches, "timeouts", m.Timeouts,
		"meanCheck", time.Duration(m.MeanCheck))

	if !results.OK() {
		return cli.Exit(fmt.Sprintf("%d of %d checks failed", results.Failed, len(results.Checks)), exitFailed)
	}
	return nil
}

// buildEnv opens the configured access paths and loads the fixtures. The raw
// transport is always built since readiness is probed through it.
func buildEnv(ctx context.Context, cfg *Config) (smoke.Env, *jsonrpc.Transport, func(), error) {
	transport, err := jsonrpc.NewTransport(jsonrpc.Config{
		URL:       cfg.Endpoint,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		return smoke.Env{}, nil, nil, err
	}
	closers := []func(){transport.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (smoke.Env, *jsonrpc.Transport, func(), error) {
		closeAll()
		return smoke.Env{}, nil, nil, err
	}

	var cs []clients.Client
	for _, id := range cfg.Clients {
		switch id {
		case clients.RawID:
			cs = append(cs, clients.NewRaw(transport))
		case clients.ProviderID:
			p, err := clients.DialProvider(ctx, cfg.Endpoint, nil)
			if err != nil {
				return fail(err)
			}
			closers = append(closers, p.Close)
			cs = append(cs, p)
		case clients.SDKID:
			// The sdk gets its own connection so its traffic stays separate.
			conn, err := clients.DialProvider(ctx, cfg.Endpoint, nil)
			if err != nil {
				return fail(err)
			}
			sdk := clients.NewSDK(conn.RPC())
			closers = append(closers, sdk.Close)
			cs = append(cs, sdk)
		case clients.LocalID:
			cs = append(cs, clients.NewLocal())
		default:
			return fail(fmt.Errorf("unknown client %q", id))
		}
	}

	artifact := fixture.DefaultArtifact()
	if cfg.ArtifactPath != "" {
		if artifact, err = fixture.LoadArtifact(cfg.ArtifactPath); err != nil {
			return fail(err)
		}
	}
	if err := artifact.Validate(); err != nil {
		return fail(err)
	}
	account, err := fixture.NewAccount(cfg.PrivateKey, cfg.ChainID)
	if err != nil {
		return fail(err)
	}
	log.Info("Signing account", "address", account.Address, "chain", cfg.ChainID)

	expect := smoke.DefaultExpectations()
	expect.ClientVersion = cfg.ClientVersion
	expect.ChainID = cfg.ChainID
	expect.NetworkID = cfg.NetworkID
	expect.Coinbase = common.HexToAddress(cfg.Coinbase)

	env := smoke.Env{
		Clients:  cs,
		Account:  account,
		Artifact: artifact,
		Expect:   expect,
		MinBlock: cfg.MinBlock,
		Inclusion: smoke.Inclusion{
			Timeout:  cfg.InclusionTimeout,
			Interval: cfg.PollInterval,
			Mine:     cfg.MineOnPoll,
		},
	}
	return env, transport, closeAll, nil
}
