package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"redplanet.games/internal/persistence/indexdb"
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/multigame"
	"redplanet.games/internal/sim/tuning"
	"redplanet.games/internal/transport/ws"
)

func main() {
	// The env file has to be read before flag defaults are computed.
	envPath := envFileFromArgs(os.Args[1:], ".env")
	envLoaded := godotenv.Load(envPath) == nil

	var (
		addr       = flag.String("addr", envString("RP_ADDR", ":8080"), "http listen address")
		configDir  = flag.String("configs", envString("RP_CONFIGS", ""), "catalogue directory with projects.json/corps.json (default: built in)")
		dataDir    = flag.String("data", envString("RP_DATA", "./data"), "runtime data directory")
		tuningPath = flag.String("tuning", envString("RP_TUNING", ""), "path to tuning.yaml (default: <configs>/tuning.yaml, else built in)")
		disableDB  = flag.Bool("disable_db", envBool("RP_DISABLE_DB", false), "disable the sqlite index")
		_          = flag.String("env", envPath, "optional env file with RP_* defaults")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)
	if envLoaded {
		logger.Printf("loaded %s", envPath)
	}

	cats, err := loadCatalogs(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tune, err := loadTuning(*configDir, *tuningPath, logger)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	reg, err := cards.New(cats, cards.Options{MaxOceans: tune.MaxOceans})
	if err != nil {
		logger.Fatalf("registry: %v", err)
	}
	eng := engine.New(reg, tune)

	_ = os.MkdirAll(*dataDir, 0o755)

	// Optional read model; the game documents never depend on it.
	var (
		idx   *indexdb.SQLiteIndex
		index multigame.Index
	)
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "games.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		index = idx
	}

	mgr, err := multigame.NewManager(multigame.Config{
		DataDir:              *dataDir,
		SnapshotEveryActions: tune.SnapshotEveryActions,
	}, eng, index, logger)
	if err != nil {
		logger.Fatalf("games: %v", err)
	}
	n, err := mgr.Resume()
	if err != nil {
		logger.Fatalf("resume games: %v", err)
	}
	logger.Printf("resumed %d games", n)

	wsSrv, err := ws.NewServer(mgr, ws.Config{
		ActionsPerSecond: tune.RateLimits.ActionsPerSecond,
		ActionsBurst:     tune.RateLimits.ActionsBurst,
		Catalogs: protocol.CatalogDigests{
			ProjectsDigest: cats.Projects.Digest,
			CorpsDigest:    cats.Corps.Digest,
			TuningDigest:   tune.Digest(),
		},
	}, logger)
	if err != nil {
		logger.Fatalf("ws: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	handler := newHandler(mgr, idx, wsSrv, httpOptions{
		AllowedOrigins: envList("RP_CORS_ORIGINS"),
		EnablePprof:    envBool("RP_ENABLE_PPROF_HTTP", false),
	}, logger)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	ctx3, cancel3 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel3()
	if err := mgr.Close(ctx3); err != nil {
		logger.Printf("close games: %v", err)
	}
	if idx != nil {
		if err := idx.Flush(ctx3); err != nil {
			logger.Printf("index flush: %v", err)
		}
	}
}

func loadCatalogs(configDir string) (*catalogs.Catalogs, error) {
	if strings.TrimSpace(configDir) == "" {
		return catalogs.Default()
	}
	return catalogs.LoadDir(configDir)
}

// loadTuning prefers an explicit path, then <configs>/tuning.yaml, then the
// built-in defaults.
func loadTuning(configDir, path string, logger *log.Logger) (tuning.Tuning, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		if configDir == "" {
			return tuning.Defaults(), nil
		}
		path = filepath.Join(configDir, "tuning.yaml")
	}
	t, err := tuning.Load(path)
	if err != nil && !explicit && os.IsNotExist(err) {
		logger.Printf("tuning not found (%s); using defaults", path)
		return tuning.Defaults(), nil
	}
	return t, err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
