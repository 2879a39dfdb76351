package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nstehr/vimy/vimy-scout/agent"
	"github.com/nstehr/vimy/vimy-scout/catalog"
	"github.com/nstehr/vimy/vimy-scout/config"
	"github.com/nstehr/vimy/vimy-scout/history"
	"github.com/nstehr/vimy/vimy-scout/ipc"
	"github.com/nstehr/vimy/vimy-scout/learn"
	"github.com/nstehr/vimy/vimy-scout/report"
	"github.com/nstehr/vimy/vimy-scout/rules"
	"github.com/nstehr/vimy/vimy-scout/state"
	"github.com/nstehr/vimy/vimy-scout/store"
)

const banner = `
██╗   ██╗██╗███╗   ███╗██╗   ██╗
██║   ██║██║████╗ ████║╚██╗ ██╔╝
██║   ██║██║██╔████╔██║ ╚████╔╝
╚██╗ ██╔╝██║██║╚██╔╝██║  ╚██╔╝
 ╚████╔╝ ██║██║ ╚═╝ ██║   ██║
  ╚═══╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Reinforcement-Learned Scouting`

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	socket := flag.String("socket", "", "unix socket to listen on (overrides config)")
	wsURL := flag.String("ws", "", "websocket environment to dial instead of listening")
	chart := flag.String("report", "", "write an HTML reward chart to this path and exit")
	debug := flag.Bool("debug", false, "log every tick")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *socket != "" {
		cfg.Transport.Socket = *socket
	}
	if *wsURL != "" {
		cfg.Transport.WebSocketURL = *wsURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hist, err := history.NewStore(cfg.Storage.History, cfg.Storage.HistoryPath)
	if err != nil {
		slog.Error("invalid history backend", "error", err)
		os.Exit(1)
	}
	if err := hist.Init(ctx); err != nil {
		slog.Error("failed to open history", "path", cfg.Storage.HistoryPath, "error", err)
		os.Exit(1)
	}
	defer hist.Close()

	if *chart != "" {
		if err := writeReport(ctx, hist, *chart); err != nil {
			slog.Error("failed to write report", "path", *chart, "error", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(banner)
	slog.Info("starting vimy-scout", "epsilon", cfg.Learning.Epsilon, "alpha", cfg.Learning.LearningRate, "gamma", cfg.Learning.Discount)

	newAgent, err := agentFactory(cfg, hist)
	if err != nil {
		slog.Error("failed to build agent", "error", err)
		os.Exit(1)
	}

	if cfg.Transport.WebSocketURL != "" {
		if err := dial(ctx, cfg, newAgent); err != nil {
			slog.Error("websocket session failed", "url", cfg.Transport.WebSocketURL, "error", err)
			os.Exit(1)
		}
		return
	}
	if err := serve(ctx, cfg, newAgent); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// agentFactory checks the configuration once and returns a constructor for
// per-session agents. Sessions share the table file, so they run one at a time.
func agentFactory(cfg config.Config, hist history.Store) (func() (*agent.Agent, error), error) {
	cat := catalog.New(cfg.Map.Size, cfg.Map.CellSize)
	ruleSet, err := rules.WithOverrides(rules.DefaultRules(), cfg.Rules)
	if err != nil {
		return nil, err
	}
	engine, err := rules.NewEngine(cat, ruleSet)
	if err != nil {
		return nil, err
	}
	slog.Info("exclusion rules compiled", "rules", engine.Rules(), "actions", cat.Len())

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	tables := store.NewFileStore(cfg.Storage.TablePath)

	return func() (*agent.Agent, error) {
		return agent.New(agent.Options{
			Catalog: cat,
			Table:   learn.NewTable(cat.Len(), cfg.Learning, rand.New(rand.NewSource(rng.Int63()))),
			Encoder: state.NewEncoder(cfg.Footprints, cfg.Map.Size),
			Rules:   engine,
			Reward:  cfg.Reward,
			Tables:  tables,
			History: hist,
			Rand:    rand.New(rand.NewSource(rng.Int63())),
		})
	}, nil
}

func handlers(a *agent.Agent, validate bool) (map[string]ipc.Handler, error) {
	h := map[string]ipc.Handler{
		ipc.TypeHello:       a.HandleHello,
		ipc.TypeObservation: a.HandleObservation,
	}
	if !validate {
		return h, nil
	}
	v, err := ipc.NewValidator()
	if err != nil {
		return nil, err
	}
	for t, fn := range h {
		h[t] = v.Validated(fn)
	}
	return h, nil
}

func serve(ctx context.Context, cfg config.Config, newAgent func() (*agent.Agent, error)) error {
	socketPath := cfg.Transport.Socket

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket %s: %w", socketPath, err)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				slog.Info("shutting down")
				return nil
			default:
				slog.Error("failed to accept connection", "error", err)
				continue
			}
		}
		slog.Info("new connection accepted")
		// One session at a time: the table file has a single writer.
		handleConn(conn, cfg, newAgent)
	}
}

func handleConn(conn net.Conn, cfg config.Config, newAgent func() (*agent.Agent, error)) {
	a, err := newAgent()
	if err != nil {
		slog.Error("failed to start session", "error", err)
		_ = conn.Close()
		return
	}
	h, err := handlers(a, cfg.Transport.Validate)
	if err != nil {
		slog.Error("failed to compile schemas", "error", err)
		_ = conn.Close()
		return
	}
	c := ipc.NewConnection(conn, h)
	c.Compress = cfg.Transport.Compress
	c.ReadLoop()
}

func dial(ctx context.Context, cfg config.Config, newAgent func() (*agent.Agent, error)) error {
	a, err := newAgent()
	if err != nil {
		return err
	}
	h, err := handlers(a, cfg.Transport.Validate)
	if err != nil {
		return err
	}
	c, err := ipc.DialWS(ctx, cfg.Transport.WebSocketURL)
	if err != nil {
		return err
	}
	for t, fn := range h {
		c.RegisterHandler(t, fn)
	}
	slog.Info("connected to environment", "url", cfg.Transport.WebSocketURL)
	c.ReadLoop(ctx)
	return nil
}

func writeReport(ctx context.Context, hist history.Store, path string) error {
	episodes, err := hist.Episodes(ctx, 0)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteChart(f, episodes); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("report written", "path", path, "episodes", len(episodes))
	return report.WriteSummary(os.Stdout, episodes, true)
}
