// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gurufinglobal/guruxkeeper/solo"
)

var (
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8545",
		Usage: "JSON-RPC service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiCallGasLimitFlag = cli.Uint64Flag{
		Name:  "api-call-gas-limit",
		Value: solo.DefaultGasLimit,
		Usage: "limit contract call gas",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by eth_getLogs",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: "",
		Usage: "directory for the chain databases, reset on start (in memory if empty)",
	}
	accountsFlag = cli.IntFlag{
		Name:  "accounts",
		Value: solo.DefaultAccounts,
		Usage: "number of funded dev accounts",
	}
	gasPriceFlag = cli.StringFlag{
		Name:  "gas-price",
		Value: "1000000000",
		Usage: "default gas price in wei",
	}
	deployKeeperFlag = cli.BoolFlag{
		Name:  "deploy-keeper",
		Usage: "deploy a GuruxKeeper owned by the first account on start",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection and serves them under /metrics",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
)
