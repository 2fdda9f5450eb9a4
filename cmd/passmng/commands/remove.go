package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/passmng/internal/config"
)

func NewRemoveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm"},
		Short:   "Delete a secret",
		Long:    "Delete the secret stored under key. Directories left empty are removed as well.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			done := track(cfg, "remove")
			defer func() { done(err) }()

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			if err := s.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}

			logger(cfg).Info("Removed %s", args[0])
			return nil
		},
	}
}
