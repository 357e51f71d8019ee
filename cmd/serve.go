package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reservation platform server",
	Long:  `Starts the mesafina HTTP server with the REST API, the staff dashboard, and the guest chat widget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		llmProvider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		kb, err := openKnowledgeBase(cfg)
		if err != nil {
			// The API and dashboard work without policy answers.
			fmt.Fprintf(os.Stderr, "Warning: knowledge base unavailable: %v\n", err)
		}

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(*cfg, database, llmProvider, kb)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())

			if kb != nil {
				if err := kb.Persist(context.Background(), dataDir(cfg)); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: persisting knowledge base: %v\n", err)
				}
			}
		}()

		fmt.Fprintf(os.Stderr, "mesafina v%s starting on %s\n", Version, cfg.ListenAddr)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DBPath)
		if kb != nil {
			fmt.Fprintf(os.Stderr, "  Policy sections indexed: %d\n", kb.Count())
		}

		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
