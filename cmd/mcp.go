package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/guests"
	mcpserver "github.com/mesafina/mesafina/internal/mcp"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/restaurants"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing reservation desk tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		kb, err := openKnowledgeBase(cfg)
		if err != nil {
			// Policy search degrades to an error result; bookings still work.
			fmt.Fprintf(os.Stderr, "Warning: knowledge base unavailable: %v\n", err)
		}

		guestStore := guests.NewStore(database)
		restStore := restaurants.NewStore(database)
		resvStore := reservations.NewStore(database, guestStore)

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "mesafina MCP server started on stdio (db=%s)\n", cfg.DBPath)

		srv := mcpserver.NewServer(restStore, guestStore, resvStore, kb)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
