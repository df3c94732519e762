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

// rpcsmoke checks the JSON-RPC surface of a freshly started RskJ regtest node.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// version is set at build time.
var version = "dev"

var (
	defaults = defaultConfig()

	app = &cli.App{
		Name:    "rpcsmoke",
		Usage:   "JSON-RPC conformance smoke test for RskJ regtest nodes",
		Version: version,
	}

	// Configuration sources
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML configuration file",
	}
	envFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Usage: "File of " + envPrefix + "* variables to load (ignored when the default is missing)",
		Value: ".env",
	}

	// Node flags
	endpointFlag = &cli.StringFlag{
		Name:  "endpoint",
		Usage: "JSON-RPC endpoint of the node under test",
		Value: defaults.Endpoint,
	}
	clientsFlag = &cli.StringSliceFlag{
		Name:  "clients",
		Usage: "Access paths to check through (raw, provider, sdk, local)",
		Value: cli.NewStringSlice(defaults.Clients...),
	}
	chainIDFlag = &cli.Uint64Flag{
		Name:  "chain-id",
		Usage: "Expected chain id, also used to sign transactions",
		Value: defaults.ChainID,
	}
	networkIDFlag = &cli.Uint64Flag{
		Name:  "network-id",
		Usage: "Expected net_version",
		Value: defaults.NetworkID,
	}
	privateKeyFlag = &cli.StringFlag{
		Name:  "private-key",
		Usage: "Hex key of the funded account that deploys the contract",
		Value: defaults.PrivateKey,
	}
	coinbaseFlag = &cli.StringFlag{
		Name:  "coinbase",
		Usage: "Expected eth_coinbase",
		Value: defaults.Coinbase,
	}
	clientVersionFlag = &cli.StringFlag{
		Name:  "client-version",
		Usage: "Substring expected in web3_clientVersion",
		Value: defaults.ClientVersion,
	}
	artifactFlag = &cli.StringFlag{
		Name:  "artifact",
		Usage: "Compiled contract artifact (default: embedded HelloWorld)",
	}
	minBlockFlag = &cli.Uint64Flag{
		Name:  "min-block",
		Usage: "Block the chain is mined to before the steady checks",
		Value: defaults.MinBlock,
	}

	// Timing flags
	requestTimeoutFlag = &cli.DurationFlag{
		Name:  "request-timeout",
		Usage: "Timeout of a single HTTP request",
		Value: defaults.RequestTimeout,
	}
	checkTimeoutFlag = &cli.DurationFlag{
		Name:  "check-timeout",
		Usage: "Timeout of one check across all its paths and retries",
		Value: defaults.CheckTimeout,
	}
	connectTimeoutFlag = &cli.DurationFlag{
		Name:  "connect-timeout",
		Usage: "How long to wait for the node to start answering",
		Value: defaults.ConnectTimeout,
	}
	inclusionTimeoutFlag = &cli.DurationFlag{
		Name:  "inclusion-timeout",
		Usage: "How long to wait for a sent transaction to be mined",
		Value: defaults.InclusionTimeout,
	}
	pollIntervalFlag = &cli.DurationFlag{
		Name:  "poll-interval",
		Usage: "Interval between receipt and readiness polls",
		Value: defaults.PollInterval,
	}
	mineOnPollFlag = &cli.BoolFlag{
		Name:  "mine-on-poll",
		Usage: "Call evm_mine on every receipt poll (for nodes without automine)",
	}
	retryAttemptsFlag = &cli.IntFlag{
		Name:  "retry-attempts",
		Usage: "Attempts per path for checks that do not mutate state",
		Value: defaults.RetryAttempts,
	}
	retryDelayFlag = &cli.DurationFlag{
		Name:  "retry-delay",
		Usage: "Pause between attempts",
		Value: defaults.RetryDelay,
	}
	rateLimitFlag = &cli.Float64Flag{
		Name:  "rate-limit",
		Usage: "Maximum raw requests per second (0 = unlimited)",
	}

	// Output flags
	reportFlag = &cli.StringFlag{
		Name:  "report",
		Usage: "Write a JSON report to this path",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log.format",
		Usage: "Log format (terminal, json)",
		Value: defaults.LogFormat,
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Also write logs to this file, rotated by size",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: defaults.Verbosity,
	}
	otlpEndpointFlag = &cli.StringFlag{
		Name:  "otlp.endpoint",
		Usage: "OTLP/HTTP collector receiving check spans (empty = tracing off)",
	}
	traceSampleRateFlag = &cli.Float64Flag{
		Name:  "trace.sample-rate",
		Usage: "Fraction of runs traced",
		Value: defaults.TraceSampleRate,
	}
)

func init() {
	app.Action = runSmoke
	app.Flags = []cli.Flag{
		configFileFlag,
		envFileFlag,
		endpointFlag,
		clientsFlag,
		chainIDFlag,
		networkIDFlag,
		privateKeyFlag,
		coinbaseFlag,
		clientVersionFlag,
		artifactFlag,
		minBlockFlag,
		requestTimeoutFlag,
		checkTimeoutFlag,
		connectTimeoutFlag,
		inclusionTimeoutFlag,
		pollIntervalFlag,
		mineOnPollFlag,
		retryAttemptsFlag,
		retryDelayFlag,
		rateLimitFlag,
		reportFlag,
		logFormatFlag,
		logFileFlag,
		verbosityFlag,
		otlpEndpointFlag,
		traceSampleRateFlag,
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
