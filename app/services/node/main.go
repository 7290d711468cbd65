package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/leveldb"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

// config holds every setting of the node. Values come from the defaults,
// then NODE_ environment variables, then command line flags.
type config struct {
	conf.Version
	Web struct {
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:5m"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		DebugHost       string        `conf:"default:0.0.0.0:7080"`
		PublicHost      string        `conf:"default:0.0.0.0:8080"`
	}
	State struct {
		Beneficiary string        `conf:"default:miner1"`
		DBType      string        `conf:"default:disk,help:memory|disk|leveldb"`
		DBPath      string        `conf:"default:zblock/blocks"`
		GenesisPath string        `conf:"default:zblock/genesis.json"`
		MineTimeout time.Duration `conf:"default:4m"`
	}
	Log struct {
		FilePath    string `conf:"help:adds a rotating log file when set"`
		ThresholdKB int64  `conf:"default:10240"`
		MaxRolls    int    `conf:"default:3"`
	}
}

func main() {
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "single node proof of work ledger",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Log.FilePath != "" {
		rlog, closeLog, err := logger.NewWithRotation("NODE", logger.Rotation{
			FilePath:    cfg.Log.FilePath,
			ThresholdKB: cfg.Log.ThresholdKB,
			MaxRolls:    cfg.Log.MaxRolls,
		})
		if err != nil {
			return fmt.Errorf("constructing rotating logger: %w", err)
		}
		defer closeLog()
		defer rlog.Sync()

		log = rlog
	}

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Ledger

	// Every event raised by the ledger is logged and pushed to the
	// websocket subscribers.
	evts := events.New(events.DefaultBuffer)
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	st, err := openLedger(cfg, ev)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	log.Infow("startup", "status", "ledger loaded", "height", st.QueryHeight(), "difficulty", st.Difficulty())

	collector := metrics.New(st)

	// Background rounds are started through the mining routes. Shutting
	// the state down stops the worker and closes the results channel.
	wrk := worker.Run(st, cfg.State.Beneficiary, ev)
	go func() {
		for result := range wrk.Results() {
			collector.ObserveRound(result.Err)
			if result.Err != nil {
				log.Infow("worker", "status", "mining stopped", "ERROR", result.Err)
				continue
			}
			log.Infow("worker", "status", "block mined", "hash", result.Block.Hash)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	muxCfg := handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		State:       st,
		Evts:        evts,
		Metrics:     collector,
		MineTimeout: cfg.State.MineTimeout,
	}

	// =========================================================================
	// Debug Service

	// The debug server isn't part of the load shedding on shutdown.
	go func() {
		log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux(build, muxCfg)); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Public Service

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      handlers.PublicMux(muxCfg),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "public router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Websocket handlers return once their channel is closed.
		evts.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// openLedger loads the genesis settings and the stored blocks. A missing
// genesis file means the defaults are used.
func openLedger(cfg config, ev func(v string, args ...any)) (*state.State, error) {
	gen := genesis.Default()
	if _, err := os.Stat(cfg.State.GenesisPath); err == nil {
		if gen, err = genesis.Load(cfg.State.GenesisPath); err != nil {
			return nil, fmt.Errorf("loading genesis: %w", err)
		}
	}

	strg, err := newStorage(cfg.State.DBType, cfg.State.DBPath, ev)
	if err != nil {
		return nil, err
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		Storage:   strg,
		EvHandler: ev,
	})
	if err != nil {
		strg.Close()
		return nil, err
	}

	return st, nil
}

// newStorage constructs the configured storage backend.
func newStorage(dbType string, dbPath string, ev func(v string, args ...any)) (database.Storage, error) {
	switch dbType {
	case "memory":
		return memory.New()

	case "disk":
		strg, err := disk.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening disk storage: %w", err)
		}
		return strg, nil

	case "leveldb":
		strg, err := leveldb.New(dbPath, ev)
		if err != nil {
			return nil, fmt.Errorf("opening leveldb storage: %w", err)
		}
		return strg, nil
	}

	return nil, fmt.Errorf("unknown storage type %q", dbType)
}
