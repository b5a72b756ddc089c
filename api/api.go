// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the solo chain over JSON-RPC, reporting reverts the way remote
// nodes do.
package api

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/gurufinglobal/guruxkeeper/log"
	"github.com/gurufinglobal/guruxkeeper/metrics"
	"github.com/gurufinglobal/guruxkeeper/solo"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	CallGasLimit    uint64
	LogsLimit       uint64
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router
func New(chain *solo.Chain, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.CallGasLimit == 0 {
		opts.CallGasLimit = solo.DefaultGasLimit
	}

	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &EthAPI{chain, opts.CallGasLimit, opts.LogsLimit}); err != nil {
		panic(err)
	}
	if err := srv.RegisterName("solo", &SoloAPI{chain}); err != nil {
		panic(err)
	}

	router := mux.NewRouter()
	router.Path("/").Methods(http.MethodPost).Handler(srv)
	newNode(chain).Mount(router, "/node")

	if opts.EnableMetrics {
		if h := metrics.HTTPHandler(); h != nil {
			router.PathPrefix("/metrics").Handler(h)
		}
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, srv.Stop
}
