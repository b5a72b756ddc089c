// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gurufinglobal/guruxkeeper/log"
	"github.com/gurufinglobal/guruxkeeper/solo"
)

func initLogger(ctx *cli.Context) {
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	log.Init(log.Options{
		Writer:    os.Stderr,
		Verbosity: ctx.Int(verbosityFlag.Name),
		JSON:      ctx.Bool(jsonLogsFlag.Name),
		Color:     useColor,
	})
}

// parseGasPrice parses a decimal or 0x prefixed wei amount.
func parseGasPrice(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") {
		v, err := hexutil.DecodeBig(s)
		if err != nil {
			return nil, fmt.Errorf("invalid gas price %q: %w", s, err)
		}
		return v, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("invalid gas price %q", s)
	}
	return v, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printSoloStartupMessage(chain *solo.Chain, apiURL string, keeper string) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	if keeper == "" {
		keeper = "not deployed"
	}
	info := fmt.Sprintf(`Starting Solo %v
    Chain ID    [ %v ]
    Gas price   [ %v wei ]
    Keeper      [ %v ]
    API portal  [ %v ]`,
		fullVersion(),
		chain.ChainID(),
		chain.GasPrice(),
		keeper,
		apiURL)

	info += tableHead
	for _, addr := range chain.Accounts() {
		key, _ := chain.Key(addr)
		info += fmt.Sprintf(tableContent, addr.Hex(), hexutil.Encode(crypto.FromECDSA(key)))
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}
