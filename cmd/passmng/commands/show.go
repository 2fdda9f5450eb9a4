package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/passmng/internal/config"
)

func NewShowCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Decrypt and print a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			done := track(cfg, "show")
			defer func() { done(err) }()

			s, err := openStore(cfg)
			if err != nil {
				return err
			}

			secret, err := s.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, secret)
			if !strings.HasSuffix(secret, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
