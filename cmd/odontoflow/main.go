package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/odontoflow/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/seed"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/tracer"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "odontoflow",
		Short:         "Dental clinic clinical history API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads .env and config, then builds the logger and services.
func bootstrap() (*app, error) {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	a, err := newApp(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}

func serveCmd() *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.log.Sync()
			if cmd.Flags().Changed("seed") {
				a.cfg.Storage.Seed = withSeed
			}
			return runServer(cmd.Context(), a)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "load demo users and patients before serving")
	return cmd
}

func runServer(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.close()

	tp, err := tracer.Init(ctx, a.cfg.Tracing, a.cfg.App)
	if err != nil {
		return fmt.Errorf("initialising tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	if a.db != nil {
		if err := a.migrate(); err != nil {
			return err
		}
	}
	if a.cfg.Storage.Seed {
		if err := a.seed(ctx); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         a.cfg.Server.Address(),
		Handler:      v1.NewRouter(a.deps()),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", a.cfg.App.Environment),
			zap.String("storage", a.cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create schemas, tables and indexes in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.log.Sync()
			defer a.close()
			return a.migrate()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo users and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.log.Sync()
			defer a.close()
			if a.db == nil {
				a.log.Warn("seeding in-memory storage; data is discarded on exit")
			}
			return a.seed(cmd.Context())
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		output string
		as     string
	)
	cmd := &cobra.Command{
		Use:   "export <patient-id>",
		Short: "Render a clinical history as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid patient id: %w", err)
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.log.Sync()
			defer a.close()

			ctx := cmd.Context()
			if a.db == nil {
				if err := a.seed(ctx); err != nil {
					return err
				}
			}

			u, err := a.users.GetByEmail(ctx, strings.ToLower(as))
			if err != nil {
				return fmt.Errorf("loading user %s: %w", as, err)
			}
			caller := service.Caller{UserID: u.ID, Email: u.Email, Name: u.FullName, Role: u.Role, IP: "cli"}

			doc, err := a.exports.Export(ctx, caller, id)
			if err != nil {
				return err
			}
			if output == "" {
				output = doc.Filename
			}
			if output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), doc.Body)
				return err
			}
			if err := os.WriteFile(output, []byte(doc.Body), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			a.log.Info("history exported", zap.String("patient_id", id.String()), zap.String("file", output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: generated name, - for stdout)")
	cmd.Flags().StringVar(&as, "as", seed.ProfessorEmail, "email of the user performing the export")
	return cmd
}
