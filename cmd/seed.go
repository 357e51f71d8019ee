package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/progress"
	"github.com/mesafina/mesafina/internal/restaurants"
	"github.com/mesafina/mesafina/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with a demo restaurant",
	Long:  `Creates a demo restaurant with tables, guests, upcoming reservations, house policies, and a staff login for trying out the platform.`,
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

		reporter := progress.NewReporter("Seeding demo data")
		result, err := seed.Run(context.Background(), database, cfg.SessionSecret, reporter)
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %q (%s)\n", result.RestaurantName, result.RestaurantID)
		fmt.Printf("  %d tables, %d guests, %d upcoming reservations\n",
			result.Tables, result.Guests, result.Reservations)
		fmt.Printf("  staff login: %s / %s\n", result.StaffUsername, result.StaffPassword)

		// Index the demo policy so policy questions work out of the box.
		kb, err := openKnowledgeBase(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: policy not indexed: %v\n", err)
			return nil
		}
		ctx := context.Background()
		rest, err := restaurants.NewStore(database).GetByID(ctx, result.RestaurantID)
		if err != nil || rest == nil {
			return fmt.Errorf("loading seeded restaurant: %w", err)
		}
		sections, err := kb.IngestPolicy(ctx, rest.ID, rest.PolicyMarkdown)
		if err != nil {
			return fmt.Errorf("indexing policy: %w", err)
		}
		if err := kb.Persist(ctx, dataDir(cfg)); err != nil {
			return fmt.Errorf("persisting knowledge base: %w", err)
		}
		fmt.Printf("  %d policy sections indexed\n", sections)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
