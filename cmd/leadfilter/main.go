package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neolimp/leadfilter/internal/classify"
	"github.com/neolimp/leadfilter/internal/config"
	"github.com/neolimp/leadfilter/internal/email"
	"github.com/neolimp/leadfilter/internal/logging"
	"github.com/neolimp/leadfilter/internal/pipeline"
	"github.com/neolimp/leadfilter/internal/store"
	"github.com/neolimp/leadfilter/internal/web"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "leadfilter",
		Short: "Contact form backend with lead classification",
		Long: `leadfilter receives contact form submissions, classifies them as real
inquiries, job applications or spam, persists every submission and notifies
the team about real leads by email.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "path to config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(redriveCmd())
	rootCmd.AddCommand(initCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadStack() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadStack()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			st, err := store.NewStore(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			sender, err := email.NewSender(cfg.Email)
			if err != nil {
				return err
			}

			p := pipeline.New(st, sender, cfg, logger)
			server := web.NewServer(p, cfg.Server.ListenAddress, logger)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("shutting down", zap.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
}

func classifyCmd() *cobra.Command {
	var sub classify.Submission

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a submission without persisting or notifying",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sub.Message == "" {
				if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
					data, err := io.ReadAll(os.Stdin)
					if err != nil {
						return fmt.Errorf("failed to read message from stdin: %w", err)
					}
					sub.Message = string(data)
				}
			}

			result := classify.Classify(sub)
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&sub.Name, "nombre", "", "contact name")
	cmd.Flags().StringVar(&sub.Company, "empresa", "", "company name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&sub.Phone, "telefono", "", "contact phone")
	cmd.Flags().StringVar(&sub.Service, "servicio", "", "requested service")
	cmd.Flags().StringVar(&sub.Message, "mensaje", "", "message body")
	return cmd
}

func statusCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store statistics and recent submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			st, err := store.NewStore(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			stats, err := st.GetStats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Total:        %d\n", stats.Total)
			fmt.Printf("Leads:        %d\n", stats.Leads)
			fmt.Printf("Suspicious:   %d\n", stats.Suspicious)
			fmt.Printf("Job seekers:  %d\n", stats.JobSeekers)
			fmt.Printf("Spam:         %d\n", stats.Spam)
			fmt.Printf("Notified:     %d\n", stats.Notified)

			records, err := st.GetRecent(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) > 0 {
				fmt.Println("\nRecent submissions:")
				for _, r := range records {
					notified := ""
					if r.NotifiedAt.Valid {
						notified = " [notified]"
					}
					fmt.Printf("  %s  %-13s score=%-4d %s%s\n",
						r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.Score, r.Email, notified)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent submissions to show")
	return cmd
}

func redriveCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "redrive",
		Short: "Retry failed lead notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadStack()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			st, err := store.NewStore(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			sender, err := email.NewSender(cfg.Email)
			if err != nil {
				return err
			}
			p := pipeline.New(st, sender, cfg, logger)

			ctx := cmd.Context()
			records, err := st.GetUnnotifiedLeads(ctx, string(classify.StatusLead), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No pending notifications.")
				return nil
			}

			sent, failed := 0, 0
			for i := range records {
				if _, err := p.Notify(ctx, &records[i]); err != nil {
					logger.Warn("redrive failed for record",
						zap.String("id", records[i].ID), zap.Error(err))
					failed++
					continue
				}
				sent++
			}
			fmt.Printf("Redrive complete: %d sent, %d failed\n", sent, failed)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum notifications to retry")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config file already exists at %s", configPath)
			}

			cfg := &config.Config{
				Server: config.ServerConfig{
					ListenAddress: config.DefaultListenAddress,
					Origin:        config.DefaultOrigin,
				},
				Email: config.EmailConfig{
					Provider: "smtp",
					SMTP: config.SMTPConfig{
						Port:   587,
						UseTLS: true,
					},
				},
			}
			if err := config.Save(configPath, cfg); err != nil {
				return err
			}
			fmt.Printf("Config written to %s\n", configPath)
			fmt.Println("Edit it to set your email provider and recipients before serving.")
			return nil
		},
	}
}
