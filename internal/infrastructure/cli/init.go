package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tfaber/taskd/internal/infrastructure/config"
	"github.com/tfaber/taskd/pkg/domain/tracker"
	"github.com/tfaber/taskd/pkg/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a taskd data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()
		repo := storage.NewFilesystemRepository(cwd)

		if repo.IsInitialized() {
			fmt.Printf("Already initialized: %s\n", repo.DataPath())
			return nil
		}

		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize data directory: %w", err)
		}
		if err := repo.SaveRegistry(tracker.NewRegistry()); err != nil {
			return fmt.Errorf("failed to write registry: %w", err)
		}
		if err := config.Save(cwd, config.Default()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Initialized taskd data directory: %s\n", repo.DataPath())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
