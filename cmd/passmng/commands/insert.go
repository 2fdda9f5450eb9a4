package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/passmng/internal/config"
	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/logging"
	"github.com/systmms/passmng/internal/prompt"
	"github.com/systmms/passmng/internal/store"
)

func NewInsertCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <key>",
		Short: "Add or replace a secret",
		Long: `Encrypt a secret and store it under key, replacing any existing one.

On a terminal the secret is read twice without echo. Otherwise the first
line of stdin is used:

  echo 'hunter2' | passmng insert email/work

The secret is encrypted for RECIPIENT (or 'recipient' in the config file).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			done := track(cfg, "insert")
			defer func() { done(err) }()

			key := args[0]
			recipient := cfg.Recipient()
			if recipient == "" {
				return pmerrors.Op("insert", key, pmerrors.Wrap(pmerrors.ErrMissingEnvironment, "%s is not set", config.EnvRecipient))
			}
			if err := store.ValidateKey(key); err != nil {
				return pmerrors.Op("insert", key, err)
			}

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			existed := s.Exists(key)

			p := prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr(), cfg.NonInteractive)
			secret, err := p.ReadSecret(key)
			if err != nil {
				return err
			}
			defer secret.Destroy()

			err = secret.Use(func(plaintext []byte) error {
				return s.Insert(cmd.Context(), key, plaintext, recipient)
			})
			if err != nil {
				return err
			}

			if existed {
				logger(cfg).Info("Updated %s", key)
			} else {
				logger(cfg).Info("Added %s", key)
			}
			logger(cfg).Debug("Encrypted for %s", logging.Secret(recipient))
			return nil
		},
	}
}
