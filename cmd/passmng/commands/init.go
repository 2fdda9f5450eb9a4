package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/passmng/internal/cipher"
	"github.com/systmms/passmng/internal/config"
)

func NewInitCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the password store",
		Long: `Create the password store directory.

The store lives in the platform data directory (for example
~/.local/share/password-store on Linux) unless --store, PASSMNG_STORE_DIR
or store_dir in the config file point elsewhere. Running init on an existing
store leaves it untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			done := track(cfg, "init")
			defer func() { done(err) }()

			s, err := openStore(cfg)
			if err != nil {
				return err
			}

			existed, err := s.Init(cmd.Context())
			if err != nil {
				return err
			}

			log := logger(cfg)
			if existed {
				log.Warn("Password store already exists at %s", s.Root())
				return nil
			}
			log.Info("Initialized password store at %s", s.Root())

			if cfg.CipherConfig().Backend == cipher.BackendGPG && cfg.Recipient() == "" {
				log.Info("Next: set RECIPIENT to your GPG key ID or email before inserting secrets")
			}
			return nil
		},
	}
}
