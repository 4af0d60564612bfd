package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "udahub",
	Short: "Autonomous support-ticket resolution engine",
	Long: `udahub runs support tickets through an agentic workflow: classify the
ticket against the account's tag vocabulary, gather relevant context
(knowledge articles, previous tickets, reservations), draft a resolution,
and escalate to a human when the draft falls short.

Every run is checkpointed per thread, so an interrupted run resumes where
it stopped instead of re-executing completed steps.

Core capabilities:
- Classifies tickets into a per-account closed tag vocabulary
- Fetches supplemental context only when the classifier asks for it
- Drafts resolutions grounded in the account's knowledge base
- Escalates low-confidence resolutions with a reason and urgency
- Remembers user preferences across runs`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
