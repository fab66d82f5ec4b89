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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scoresheet/internal/config"
	"scoresheet/internal/db"
	httpSrv "scoresheet/internal/http"
	"scoresheet/internal/logging"
	"scoresheet/internal/migrations"
	"scoresheet/internal/worker"
)

var flags struct {
	addr      string
	port      int
	saveDir   string
	publicURL string
}

var rootCmd = &cobra.Command{
	Use:   "scoresheet",
	Short: "Serve the score review UI",
	Long: `scoresheet serves a browser UI for scoring model outputs.

Reviewers enter their tester, user and model names, upload a spreadsheet of
ID/input/output rows, fill in scores and save. Saved files hold only ID and
score and are restored automatically the next time the same file is loaded.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flags.addr, "addr", "", "bind address (overrides SCORESHEET_ADDR)")
	rootCmd.Flags().IntVar(&flags.port, "port", 0, "listen port (overrides SCORESHEET_PORT)")
	rootCmd.Flags().StringVar(&flags.saveDir, "save-dir", "", "base directory for saved scores (overrides SCORESHEET_SAVE_DIR)")
	rootCmd.Flags().StringVar(&flags.publicURL, "public-url", "", "URL printed for reviewers (overrides SCORESHEET_PUBLIC_URL)")
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Addr = flags.addr
	}
	if f.Changed("port") {
		cfg.Port = flags.port
	}
	if f.Changed("save-dir") {
		cfg.SaveDir = flags.saveDir
	}
	if f.Changed("public-url") {
		cfg.PublicURL = flags.publicURL
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	deps := httpSrv.Deps{Config: cfg, Log: logger}

	if cfg.DatabaseURL != "" {
		// Run embedded migrations (idempotent)
		if err := migrations.Run(cfg.DatabaseURL); err != nil {
			return err
		}
		dbase, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer dbase.Close()
		deps.Ledger = db.NewLedger(dbase)
	}
	if cfg.RedisAddr != "" {
		q := worker.NewQueue(cfg.RedisAddr)
		defer q.Close()
		deps.Mirror = q
	}

	srv := httpSrv.NewServer(deps)
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("url", cfg.BaseURL()),
			zap.String("save_dir", cfg.SaveDir),
			zap.Bool("ledger", deps.Ledger != nil),
			zap.Bool("mirror", deps.Mirror != nil),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
