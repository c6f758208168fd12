package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tfaber/taskd/pkg/domain/tracker"
	"github.com/tfaber/taskd/pkg/storage"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of the stored projects and tasks",
	Long: `Show a summary of the stored projects and tasks.

Reads .taskd/registry.json directly, without going through a running
server, so it reflects whatever is on disk right now.`,
	RunE: runStatusCmd,
}

type statusProjectOutput struct {
	ID     int            `json:"id"`
	Name   string         `json:"name"`
	Tasks  int            `json:"tasks"`
	Counts map[string]int `json:"counts"`
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	cwd, _ := os.Getwd()
	repo := storage.NewFilesystemRepository(cwd)

	if !repo.IsInitialized() {
		return fmt.Errorf("no data directory found; run 'taskd init' first")
	}

	reg, err := repo.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if statusJSON {
		return outputStatusJSON(reg)
	}
	return outputStatusText(reg)
}

func outputStatusJSON(reg *tracker.Registry) error {
	out := make([]statusProjectOutput, 0, len(reg.Projects))
	for _, p := range reg.Projects {
		out = append(out, statusProjectOutput{
			ID:     p.ID,
			Name:   p.Name,
			Tasks:  len(p.Tasks),
			Counts: countTasksByState(p),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func outputStatusText(reg *tracker.Registry) error {
	if len(reg.Projects) == 0 {
		fmt.Println("No projects yet.")
		return nil
	}

	for _, p := range reg.Projects {
		counts := countTasksByState(p)
		fmt.Printf("Project #%d: %s\n", p.ID, p.Name)
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		fmt.Printf("  Tasks: %d\n", len(p.Tasks))
		for _, s := range tracker.AllStates() {
			if counts[string(s)] > 0 {
				fmt.Printf("  - %-11s %d\n", s, counts[string(s)])
			}
		}
	}
	return nil
}

func countTasksByState(p *tracker.Project) map[string]int {
	counts := make(map[string]int)
	for _, t := range p.Tasks {
		counts[string(t.State)]++
	}
	return counts
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false,
		"Output in JSON format")

	RootCmd.AddCommand(statusCmd)
}
