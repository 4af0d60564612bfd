package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/engine"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

var (
	runAccount  string
	runUser     string
	runThread   string
	runMetadata []string
	runQuiet    bool
)

var runCmd = &cobra.Command{
	Use:   "run <ticket text>",
	Short: "Run a support ticket through the workflow",
	Long: `Run a support ticket through the full workflow: classification, context
gathering, resolution, and escalation if the resolution falls short.

The ticket text is the single positional argument. Metadata key=value
pairs can be attached with --meta, repeated as needed.

Examples:
  udahub run "I need to change the location of my subscription."
  udahub run --user client_peter "Cancel my booking" --meta channel=email
  udahub run --thread my-thread "..."   # pick a thread ID for later resume`,
	Args: cobra.ExactArgs(1),
	RunE: runTicket,
}

func init() {
	runCmd.Flags().StringVar(&runAccount, "account", "", "Account the ticket belongs to (defaults from config)")
	runCmd.Flags().StringVar(&runUser, "user", "", "User the ticket was raised by, if known")
	runCmd.Flags().StringVar(&runThread, "thread", "", "Thread ID (generated when empty)")
	runCmd.Flags().StringArrayVar(&runMetadata, "meta", nil, "Ticket metadata as key=value (repeatable)")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Suppress per-step progress output")
}

func runTicket(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	account := runAccount
	if account == "" {
		account = rt.cfg.Defaults.AccountID
	}

	metadata, err := parseMetadata(runMetadata)
	if err != nil {
		return err
	}

	state := models.NewTicketState(args[0], metadata, account, runUser)
	return executeRun(rt, state, runThread)
}

// executeRun drives the engine with signal-aware cancellation and prints the
// outcome. Shared by run and resume.
func executeRun(rt *runtime, state models.TicketState, threadID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !runQuiet {
		rt.engine.SetObserver(printProgress)
	}

	result, err := rt.engine.Run(ctx, state, threadID)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Printf("\n%s Interrupted. Resume with:\n  udahub resume %s\n",
				color.YellowString("⚠"), result.ThreadID)
			return nil
		}
		fmt.Printf("\n%s Run failed. The thread can be resumed once the cause clears:\n  udahub resume %s\n",
			color.RedString("✗"), result.ThreadID)
		return err
	}

	printResult(result)
	return nil
}

// printProgress renders engine events as the run advances.
func printProgress(evt engine.Event) {
	switch evt.Type {
	case engine.EventRunStarted:
		fmt.Printf("Thread %s\n", evt.ThreadID)
	case engine.EventRunResumed:
		fmt.Printf("Resuming thread %s (%s)\n", evt.ThreadID, evt.Detail)
	case engine.EventStepStarted:
		fmt.Printf("  %s %s...\n", color.CyanString("→"), evt.Step)
	case engine.EventPreferenceSaved:
		fmt.Printf("  %s saved preference for %s\n", color.GreenString("✓"), evt.Detail)
	}
}

// printResult renders the final state of a completed run.
func printResult(result engine.RunResult) {
	state := result.State

	fmt.Println()
	if len(state.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(state.Tags, ", "))
	}

	if result.Escalated {
		fmt.Printf("\n%s Escalated to a human agent (%s urgency)\n",
			color.RedString("⚠"), state.UrgencyLevel)
		fmt.Printf("Reason: %s\n", state.EscalationReason)
		if state.ResolutionText != "" {
			fmt.Printf("\nDraft resolution (not sent):\n%s\n", state.ResolutionText)
		}
	} else {
		fmt.Printf("%s Resolved\n\n%s\n", color.GreenString("✓"), state.ResolutionText)
	}

	if state.ShouldUpdatePreference && state.NewPreference != "" {
		fmt.Printf("\nLearned preference: %s\n", state.NewPreference)
	}

	fmt.Printf("\nThread: %s (%d steps)\n", result.ThreadID, len(result.Steps))
}

// parseMetadata converts key=value flags into a metadata map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --meta value %q, expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}
