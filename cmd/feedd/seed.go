package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-card-feed/internal/categories"
	"github.com/tbourn/go-card-feed/internal/repo"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog (categories, cards, a mood, an admin profile)",
	Long: `Load the demo catalog. One category is created per slug of the category
mapping (CATEGORY_MAP_PATH or the embedded default). Seeding is skipped when
any category already exists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mapping, err := categories.Load(cfg.Feed.CategoryMapPath)
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := repo.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		seeded, err := repo.Seed(cmd.Context(), db, mapping.Slugs())
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if !seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "catalog already present, nothing seeded")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories\n", len(mapping.Slugs()))
		return nil
	},
}
