package commands

import (
	"context"

	"github.com/couchcryptid/task-trek/internal/config"
	"github.com/spf13/cobra"
)

var cfg *config.Config

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tasktrek",
		Short:        "TaskTrek sign-in, themed header and weather widget",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(config.Load)
		},
	}

	root.AddCommand(serveCmd(), forecastCmd(), themeCmd())
	return root
}

func loadConfig(load func() (*config.Config, error)) error {
	loaded, err := load()
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}
