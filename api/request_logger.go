// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/pborman/uuid"

	"github.com/gurufinglobal/guruxkeeper/log"
)

const requestIDHeader = "X-Request-Id"

// RequestLoggerHandler returns a http handler logging every request with an id,
// which is echoed in the X-Request-Id response header.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		// Read and log the body (note: this can only be done once)
		var bodyBytes []byte
		var err error
		if r.Body != nil {
			bodyBytes, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("unexpected body read error", "err", err)
				return // don't pass bad request to the next handler
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New()
		}
		w.Header().Set(requestIDHeader, id)

		logger.Info("API Request",
			"id", id,
			"timestamp", time.Now().Unix(),
			"URI", r.URL.String(),
			"Method", r.Method,
			"Body", string(bodyBytes),
		)

		handler.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
