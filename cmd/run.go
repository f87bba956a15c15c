package cmd

import (
	"fmt"
	"os"

	"github.com/compasslearn/compass/internal/app"
	"github.com/compasslearn/compass/internal/curriculum"
	"github.com/compasslearn/compass/internal/journey"
	"github.com/compasslearn/compass/internal/llm"
	"github.com/compasslearn/compass/internal/store"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	opts := app.Options{}

	var gen curriculum.Generator
	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Stored journeys remain browsable; charting new ground is disabled.")
	} else {
		gen = curriculum.NewService(provider, curriculum.DefaultConfig())
		opts.LLMReady = true
	}

	opts.Journeys = journey.NewService(st.SessionRepo(), gen)
	return app.Run(opts)
}
