package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/passmng/internal/config"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored keys",
		Long:    "Print every key in the store, one per line, in lexicographic order.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			done := track(cfg, "list")
			defer func() { done(err) }()

			s, err := openStore(cfg)
			if err != nil {
				return err
			}

			keys, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				logger(cfg).Info("Password store is empty")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, key := range keys {
				fmt.Fprintln(out, key)
			}
			return nil
		},
	}
}
