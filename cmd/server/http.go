package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"

	"github.com/rs/cors"

	"redplanet.games/internal/persistence/indexdb"
	"redplanet.games/internal/sim/multigame"
	"redplanet.games/internal/transport/observer"
	"redplanet.games/internal/transport/ws"
)

type httpOptions struct {
	// Empty allows every origin.
	AllowedOrigins []string
	EnablePprof    bool
}

func newHandler(mgr *multigame.Manager, idx *indexdb.SQLiteIndex, wsSrv *ws.Server, opts httpOptions, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, mgr, idx)
	})
	if opts.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (RP_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	observer.NewServer(mgr, idx, logger).Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

// writeMetrics emits the Prometheus text format by hand.
func writeMetrics(rw http.ResponseWriter, mgr *multigame.Manager, idx *indexdb.SQLiteIndex) {
	games := mgr.List()
	finished := 0
	for _, g := range games {
		if g.Finished {
			finished++
		}
	}
	fmt.Fprintf(rw, "# HELP redplanet_games Games known to the server.\n")
	fmt.Fprintf(rw, "# TYPE redplanet_games gauge\n")
	fmt.Fprintf(rw, "redplanet_games{state=%q} %d\n", "running", len(games)-finished)
	fmt.Fprintf(rw, "redplanet_games{state=%q} %d\n", "finished", finished)

	fmt.Fprintf(rw, "# HELP redplanet_game_seq Committed actions per game.\n")
	fmt.Fprintf(rw, "# TYPE redplanet_game_seq gauge\n")
	for _, g := range games {
		fmt.Fprintf(rw, "redplanet_game_seq{game=%q} %d\n", g.ID, g.Seq)
	}

	if idx == nil {
		return
	}
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP redplanet_index_queue_depth Pending index writes.\n")
	fmt.Fprintf(rw, "# TYPE redplanet_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "redplanet_index_queue_depth %d\n", s.QueueDepth)
	fmt.Fprintf(rw, "# HELP redplanet_index_dropped_total Index writes dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE redplanet_index_dropped_total counter\n")
	fmt.Fprintf(rw, "redplanet_index_dropped_total{kind=%q} %d\n", "game", s.DropGameTotal)
	fmt.Fprintf(rw, "redplanet_index_dropped_total{kind=%q} %d\n", "event", s.DropEventTotal)
	fmt.Fprintf(rw, "redplanet_index_dropped_total{kind=%q} %d\n", "audit", s.DropAuditTotal)
	fmt.Fprintf(rw, "redplanet_index_dropped_total{kind=%q} %d\n", "snapshot", s.DropSnapshotTotal)
	fmt.Fprintf(rw, "redplanet_index_dropped_total{kind=%q} %d\n", "result", s.DropResultTotal)
}
