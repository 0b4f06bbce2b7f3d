package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"webhook-etl/internal/api"
	"webhook-etl/internal/capture"
	"webhook-etl/internal/config"
	"webhook-etl/internal/events"
	"webhook-etl/internal/pipeline"
	"webhook-etl/internal/store"
	"webhook-etl/pkg/utils"
)

func newInitCmd(cfgPath *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file and create the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *cfgPath
			if path == "" {
				path = config.DefaultPath
			}

			cfg := &config.Config{}
			cfg.SetDefaults()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) || force {
				if err := cfg.Write(path); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created", path)
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "exists", path)
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			} else {
				return err
			}

			st, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "database ready", cfg.Database.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the capture server and the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if logFile, _ := config.InitLogging(cfg.Log.Dir, cfg.Log.File); logFile != nil {
				defer logFile.Close()
			}

			st, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			manager, closeEvents := buildManager(cfg, st)
			defer closeEvents()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			adminAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			admin := api.NewRouter(manager, st, cfg.Auth.JWTSecret).Server(adminAddr)
			captureSrv := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", cfg.Capture.Host, cfg.Capture.Port),
				Handler:           capture.NewServer(st, cfg.Capture.MaxBodyBytes).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 2)
			for _, srv := range []*http.Server{admin, captureSrv} {
				go func(srv *http.Server) {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
					}
				}(srv)
			}
			log.Printf("📡 Capturing webhooks on http://%s/hooks/{id}", captureSrv.Addr)

			go store.RunRetention(ctx, st, cfg.Retention.Days, cfg.RetentionInterval())

			select {
			case <-ctx.Done():
				log.Println("🛑 Shutting down...")
			case err = <-errCh:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if serr := manager.Shutdown(shutdownCtx); serr != nil {
				log.Printf("⚠️ Job shutdown: %v", serr)
			}
			_ = admin.Shutdown(shutdownCtx)
			_ = captureSrv.Shutdown(shutdownCtx)
			return err
		},
	}
}

func newRunCmd(cfgPath *string) *cobra.Command {
	var jobPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one job from a YAML or JSON file and print its final state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			spec, err := config.LoadJobSpec(jobPath)
			if err != nil {
				return err
			}

			st, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			manager, closeEvents := buildManager(cfg, st)
			defer closeEvents()

			job, err := manager.Submit(spec)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			runErr := manager.Execute(ctx, job.ID)

			final, err := manager.Get(job.ID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(final); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "job specification file")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newTokenCmd(cfgPath *string) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin API bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			token, err := api.IssueToken(cfg.Auth.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func newEventsCmd(cfgPath *string) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Consume job events from Redis and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if cfg.Redis.Addr == "" {
				return errors.New("redis.addr is not configured")
			}
			pub := events.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key)
			defer pub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for seen := 0; count <= 0 || seen < count; {
				event, err := pub.Next(ctx, 5*time.Second)
				if ctx.Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				if event == nil {
					continue
				}
				if err := enc.Encode(event); err != nil {
					return err
				}
				seen++
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many events (0 = until interrupted)")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildManager wires the loader sinks and the event publisher from config
func buildManager(cfg *config.Config, st store.Store) (*pipeline.Manager, func()) {
	var mailer pipeline.Mailer
	if cfg.SMTP.Host != "" {
		mailer = &pipeline.SMTPMailer{
			Host:          cfg.SMTP.Host,
			Port:          cfg.SMTP.Port,
			User:          cfg.SMTP.Username,
			Pass:          cfg.SMTP.Password,
			From:          cfg.SMTP.From,
			SkipTLSVerify: cfg.SMTP.SkipTLSVerify,
		}
	}
	loader := pipeline.NewLoader(&http.Client{Timeout: cfg.HTTPTimeout()}, mailer, utils.NewOutputManager(cfg.Output.Dir))

	var (
		publisher pipeline.EventPublisher
		closeFn   = func() {}
	)
	if cfg.Redis.Addr != "" {
		redisPub := events.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key)
		publisher = redisPub
		closeFn = func() { _ = redisPub.Close() }
	} else {
		publisher = events.NewMemoryPublisher(100)
	}

	manager := pipeline.NewManager(st, loader,
		pipeline.WithEvents(publisher),
		pipeline.WithExtractLimit(cfg.ETL.ExtractLimit),
	)
	return manager, closeFn
}
