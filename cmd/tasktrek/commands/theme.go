package commands

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/task-trek/internal/adapter/store"
	"github.com/couchcryptid/task-trek/internal/config"
	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/spf13/cobra"
)

func themeCmd() *cobra.Command {
	var visitor string

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Read or write a visitor's stored theme preference",
		// Only the store settings matter here.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(config.LoadStore)
		},
	}
	cmd.PersistentFlags().StringVar(&visitor, "visitor", "", "visitor id (the tasktrek_visitor cookie)")
	_ = cmd.MarkPersistentFlagRequired("visitor")

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the stored theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := store.Open(cmd.Context(), cfg.StoreDriver, cfg.StoreDSN, observability.NewCLILogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer prefs.Close()

			t, err := prefs.GetTheme(cmd.Context(), visitor)
			if errors.Is(err, domain.ErrPreferenceNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "(none)")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set dark|light",
		Short: "Persist a theme for the visitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseTheme(args[0])
			if err != nil {
				return err
			}
			prefs, err := store.Open(cmd.Context(), cfg.StoreDriver, cfg.StoreDSN, observability.NewCLILogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer prefs.Close()

			if err := prefs.PutTheme(cmd.Context(), visitor, t); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	})
	return cmd
}
