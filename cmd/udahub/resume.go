package main

import (
	"github.com/spf13/cobra"

	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <thread-id>",
	Short: "Resume an interrupted run from its checkpoint",
	Long: `Resume a run from its last checkpoint. Completed steps are not
re-executed; the run continues from the step that was pending when it
stopped. Resuming an already-completed thread prints its final state.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	// The checkpointed state is authoritative. If no checkpoint exists the
	// thread ID was mistyped and the engine rejects the empty ticket.
	return executeRun(rt, models.TicketState{}, args[0])
}
