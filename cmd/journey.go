package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/compasslearn/compass/internal/curriculum"
	"github.com/compasslearn/compass/internal/graph"
	"github.com/compasslearn/compass/internal/journey"
	"github.com/compasslearn/compass/internal/llm"
	"github.com/compasslearn/compass/internal/store"
	"github.com/spf13/cobra"
)

var journeyCmd = &cobra.Command{
	Use:   "journey",
	Short: "Inspect and manage stored journeys",
}

var journeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored journeys",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := journeyService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		metas, err := svc.List(context.Background())
		if err != nil {
			return fmt.Errorf("list journeys: %w", err)
		}
		if len(metas) == 0 {
			fmt.Println("No journeys yet.")
			return nil
		}

		fmt.Printf("%-36s  %-40s  %-8s  %s\n", "ID", "Topic", "Progress", "Updated")
		fmt.Println(strings.Repeat("─", 110))
		for _, m := range metas {
			topic := m.Context
			if r := []rune(topic); len(r) > 40 {
				topic = string(r[:37]) + "..."
			}
			progress := "?"
			if sess, err := svc.Get(context.Background(), m.ID); err == nil {
				done, total := sess.Root.Progress(sess.Completed.View(""))
				progress = fmt.Sprintf("%d/%d", done, total)
			}
			fmt.Printf("%-36s  %-40s  %-8s  %s\n",
				m.ID, topic, progress, m.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var journeyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a journey's map with unit statuses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := journeyService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		sess, err := svc.Get(context.Background(), args[0])
		if err != nil {
			return err
		}

		done, total := sess.Root.Progress(sess.Completed.View(""))
		fmt.Printf("Topic:     %s\n", sess.Context)
		fmt.Printf("Progress:  %d/%d units\n\n", done, total)

		printGraph(sess.Root, 0)

		if gl := sess.Root.Glossary(); len(gl) > 0 {
			fmt.Println("\nGlossary")
			fmt.Println(strings.Repeat("─", 60))
			for _, t := range gl {
				fmt.Printf("%-24s  %s\n", t.Term, t.Definition)
			}
		}
		return nil
	},
}

var journeyStartCmd = &cobra.Command{
	Use:   "start <topic>",
	Short: "Chart a new journey for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")
		ctx := cmd.Context()

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
		if err != nil {
			return fmt.Errorf("configure LLM provider: %w", err)
		}
		gen := curriculum.NewService(provider, curriculum.DefaultConfig())
		svc := journey.NewService(st.SessionRepo(), gen)

		fmt.Printf("Charting %q...\n", topic)
		sess, err := svc.Start(ctx, topic)
		if err != nil {
			return fmt.Errorf("start journey: %w", err)
		}

		fmt.Printf("\nJourney %s\n\n", sess.ID)
		printGraph(sess.Root, 0)
		return nil
	},
}

var journeyCompleteCmd = &cobra.Command{
	Use:   "complete <id> <unit>",
	Short: "Mark a unit of a journey's root map complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := journeyService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := svc.Complete(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		switch {
		case res.AlreadyDone:
			fmt.Println("Already completed.")
		case res.Leaf:
			fmt.Println("Completed. That was a frontier unit; open the app and press e to chart what comes next.")
		case res.Next != "":
			fmt.Printf("Completed. Up next: %s\n", res.Next)
		default:
			fmt.Println("Completed.")
		}
		return nil
	},
}

var journeyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a journey and all its progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := journeyService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := svc.Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("delete journey: %w", err)
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	journeyCmd.AddCommand(journeyListCmd)
	journeyCmd.AddCommand(journeyStartCmd)
	journeyCmd.AddCommand(journeyShowCmd)
	journeyCmd.AddCommand(journeyCompleteCmd)
	journeyCmd.AddCommand(journeyDeleteCmd)
}

// journeyService opens the store and builds a generator-less service for
// CLI inspection. The returned func closes the store.
func journeyService(cmd *cobra.Command) (*journey.Service, func(), error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	svc := journey.NewService(st.SessionRepo(), nil)
	return svc, func() { st.Close() }, nil
}

// printGraph writes one line per unit, recursing into sub-graphs.
// Statuses were resolved when the session loaded.
func printGraph(g *graph.Graph, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, u := range g.Units() {
		marker := ""
		if u.SubGraph != nil {
			marker = "  ◈"
		}
		fmt.Printf("%s%s %-40s %-10s%s\n",
			pad, u.Status.Icon(), u.Title, u.Status.Label(), marker)
		if u.SubGraph != nil {
			printGraph(u.SubGraph, indent+1)
		}
	}
}
