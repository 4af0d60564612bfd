package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/config"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/store"
)

var (
	cleanupOlderThan time.Duration
	cleanupThread    string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old run checkpoints",
	Long: `Remove checkpoints of finished or abandoned runs. Deleted threads can
no longer be resumed.

Examples:
  udahub cleanup                      # Remove checkpoints older than 30 days
  udahub cleanup --older-than 24h     # Remove checkpoints older than a day
  udahub cleanup --thread <id>        # Remove one specific thread`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 30*24*time.Hour, "Age threshold for removal")
	cleanupCmd.Flags().StringVar(&cleanupThread, "thread", "", "Remove a single thread's checkpoint")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(cfg.Store.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	if cleanupThread != "" {
		if err := db.DeleteCheckpoint(cleanupThread); err != nil {
			return err
		}
		fmt.Printf("%s Removed checkpoint for thread %s\n", color.GreenString("✓"), cleanupThread)
		return nil
	}

	count, err := db.PurgeOldCheckpoints(cleanupOlderThan)
	if err != nil {
		return err
	}
	fmt.Printf("%s Removed %d checkpoint(s) older than %s\n", color.GreenString("✓"), count, cleanupOlderThan)
	return nil
}
