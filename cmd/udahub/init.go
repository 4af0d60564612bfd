package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/config"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/store"
)

var (
	initSeedPath   string
	initWithConfig bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the udahub database",
	Long: `Initialize the udahub database: create it, apply migrations, and
optionally seed accounts, knowledge articles, previous tickets, and
reservations from a YAML file.

Examples:
  udahub init                      # Create an empty database
  udahub init --seed seed.yaml     # Create and seed support data
  udahub init --with-config        # Also write a .udahub.yaml template`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initSeedPath, "seed", "", "YAML file with support data to seed")
	initCmd.Flags().BoolVar(&initWithConfig, "with-config", false, "Create a .udahub.yaml template")
}

// seedFile is the YAML shape of a support data seed.
type seedFile struct {
	Accounts []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Articles []struct {
			ID      string `yaml:"id"`
			Title   string `yaml:"title"`
			Content string `yaml:"content"`
			Tags    string `yaml:"tags"`
		} `yaml:"articles"`
	} `yaml:"accounts"`
	Tickets []struct {
		ID       string `yaml:"id"`
		Account  string `yaml:"account"`
		User     string `yaml:"user"`
		Content  string `yaml:"content"`
		Tags     string `yaml:"tags"`
		Metadata string `yaml:"metadata"`
	} `yaml:"tickets"`
	Reservations []struct {
		ID      string `yaml:"id"`
		User    string `yaml:"user"`
		Details string `yaml:"details"`
		Status  string `yaml:"status"`
		Notes   string `yaml:"notes"`
	} `yaml:"reservations"`
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(cfg.Store.DBPath)
	if err != nil {
		printStatus("✗", "Could not open database", color.FgRed)
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		printStatus("✗", "Migration failed", color.FgRed)
		return err
	}
	printStatus("✓", fmt.Sprintf("Database ready at %s", db.Path()), color.FgGreen)

	if initSeedPath != "" {
		if err := seedDatabase(db, initSeedPath); err != nil {
			printStatus("✗", "Seeding failed", color.FgRed)
			return err
		}
		printStatus("✓", fmt.Sprintf("Seeded support data from %s", initSeedPath), color.FgGreen)
	}

	if initWithConfig {
		if err := createProjectConfig(); err != nil {
			return fmt.Errorf("creating project config: %w", err)
		}
		printStatus("✓", "Created .udahub.yaml template", color.FgGreen)
	}

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	}

	fmt.Printf("\n%s udahub initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	fmt.Println("  udahub run \"I need to change the location of my subscription.\"")
	return nil
}

// seedDatabase loads a YAML seed file into the support tables. Existing rows
// with matching IDs are updated, so re-seeding is safe.
func seedDatabase(db *store.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	for _, account := range seed.Accounts {
		if err := db.InsertAccount(account.ID, account.Name); err != nil {
			return err
		}
		for _, article := range account.Articles {
			if err := db.InsertArticle(article.ID, account.ID, article.Title, article.Content, article.Tags); err != nil {
				return err
			}
		}
	}

	for _, ticket := range seed.Tickets {
		if err := db.InsertTicket(ticket.ID, ticket.Account, ticket.User, ticket.Content, ticket.Tags, ticket.Metadata); err != nil {
			return err
		}
	}

	for _, reservation := range seed.Reservations {
		if err := db.InsertReservation(reservation.ID, reservation.User, reservation.Details, reservation.Status, reservation.Notes); err != nil {
			return err
		}
	}

	return nil
}

// createProjectConfig creates a .udahub.yaml template in the current directory.
func createProjectConfig() error {
	const path = ".udahub.yaml"

	if _, err := os.Stat(path); err == nil {
		return nil // Already exists, don't overwrite
	}

	template := `# udahub Project Configuration
# This file overrides defaults from ~/.config/udahub/config.yaml

# anthropic:
#   model: claude-sonnet-4-5-20250929
#   use_aws_bedrock: false
#   aws_region: us-west-2

# thresholds:
#   classified: 70
#   needs_tickets: 70
#   needs_reservations: 70
#   resolved: 70

# store:
#   db_path: ./udahub.db

# defaults:
#   account_id: cultpass

# vocabulary:
#   override_path: ./vocabulary.yaml
`

	return os.WriteFile(path, []byte(template), 0644)
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
