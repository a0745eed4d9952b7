package stats

import (
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toba/osm-router/logging"
)

var log = logging.NewLogger("stats")

// StartHTTP serves /metrics and /debug/pprof on bind in the background.
func StartHTTP(bind string) {
	mux := newMux()
	go func() {
		log.Errorf("metrics server: %v", http.ListenAndServe(bind, mux))
	}()
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
