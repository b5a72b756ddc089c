// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gurufinglobal/guruxkeeper/api"
	"github.com/gurufinglobal/guruxkeeper/keeper/gen"
	"github.com/gurufinglobal/guruxkeeper/log"
	"github.com/gurufinglobal/guruxkeeper/metrics"
	"github.com/gurufinglobal/guruxkeeper/solo"
)

var (
	version   string
	gitCommit string
	release   = "dev"

	logger = log.WithContext("pkg", "solo")
)

func fullVersion() string {
	return fmt.Sprintf("%s-%s-commit%s", release, version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Solo",
		Usage:     "GuruxKeeper development chain serving JSON-RPC",
		Copyright: "2025 The GuruxKeeper developers",
		Flags: []cli.Flag{
			apiAddrFlag,
			apiCorsFlag,
			apiCallGasLimitFlag,
			apiLogsLimitFlag,
			dataDirFlag,
			accountsFlag,
			gasPriceFlag,
			deployKeeperFlag,
			enableMetricsFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: soloAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func soloAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	gasPrice, err := parseGasPrice(ctx.String(gasPriceFlag.Name))
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	chain, err := solo.New(solo.Options{
		DataDir:  ctx.String(dataDirFlag.Name),
		Accounts: ctx.Int(accountsFlag.Name),
		GasPrice: gasPrice,
	})
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing databases..."); chain.Close() }()

	var keeperInfo string
	if ctx.Bool(deployKeeperFlag.Name) {
		receipt, err := chain.Deploy(chain.Accounts()[0], gen.Bin)
		if err != nil {
			return fmt.Errorf("deploy keeper: %w", err)
		}
		keeperInfo = receipt.ContractAddress.Hex()
	}

	handler, closeAPI := api.New(chain, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		CallGasLimit:    ctx.Uint64(apiCallGasLimitFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer closeAPI()

	listener, err := net.Listen("tcp", ctx.String(apiAddrFlag.Name))
	if err != nil {
		return fmt.Errorf("listen API addr [%v]: %w", ctx.String(apiAddrFlag.Name), err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	printSoloStartupMessage(chain, "http://"+listener.Addr().String()+"/", keeperInfo)

	exit := handleExitSignal()
	g, gctx := errgroup.WithContext(exit)
	g.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
