// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/gurufinglobal/guruxkeeper/metrics"
)

var (
	metricHttpReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHttpReqDuration = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
)

// metricsResponseWriter is a wrapper around http.ResponseWriter that captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// routeName labels a request by its route name, falling back to the path.
func routeName(r *http.Request) string {
	name := r.URL.Path
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		name = route.GetName()
		if _, path, ok := strings.Cut(name, " "); ok {
			name = path
		}
	}
	name = strings.Trim(name, "/")
	if name == "" {
		return "rpc"
	}
	return strings.NewReplacer("/", "_", "{", "", "}", "").Replace(name)
}

// metricsMiddleware is a middleware that records metrics for each request.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		mrw := newMetricsResponseWriter(w)
		next.ServeHTTP(mrw, r)

		labels := map[string]string{"name": routeName(r), "code": strconv.Itoa(mrw.statusCode), "method": r.Method}
		metricHttpReqCounter().AddWithLabel(1, labels)
		metricHttpReqDuration().ObserveWithLabels(time.Since(now).Milliseconds(), labels)
	})
}
