package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/systmms/passmng/internal/config"
	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/generate"
	"github.com/systmms/passmng/internal/secure"
	"github.com/systmms/passmng/internal/store"
)

func NewGenerateCommand(cfg *config.Config) *cobra.Command {
	var (
		special bool
		key     string
	)

	cmd := &cobra.Command{
		Use:   "generate [length]",
		Short: "Generate a random password",
		Long: fmt.Sprintf(`Generate a random password from letters and digits.

--special adds the symbols %s
The default length is %d and the minimum is %d; both can be set in the
config file under 'generate'. With --key the password is also stored.

Examples:
  passmng generate
  passmng generate 32 --special
  passmng generate 24 --key email/work`, generate.Symbols, generate.DefaultLength, generate.MinLength),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			done := track(cfg, "generate")
			defer func() { done(err) }()

			length, extended := cfg.GenerateDefaults()
			if cmd.Flags().Changed("special") {
				extended = special
			}
			if len(args) == 1 {
				length, err = strconv.Atoi(args[0])
				if err != nil {
					return pmerrors.UserError{
						Message:    "Invalid password length",
						Details:    fmt.Sprintf("%q is not a number", args[0]),
						Suggestion: fmt.Sprintf("Pass a whole number of at least %d", generate.MinLength),
						Err:        err,
					}
				}
			}

			password, err := generate.Password(length, extended)
			if err != nil {
				return err
			}

			if key != "" {
				if err := storeGenerated(cmd, cfg, key, password); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated: %s\n", password)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&special, "special", "s", false, "Include symbols")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Also store the password under this key")

	return cmd
}

func storeGenerated(cmd *cobra.Command, cfg *config.Config, key, password string) error {
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

	secret := secure.Seal([]byte(password))
	defer secret.Destroy()

	err = secret.Use(func(plaintext []byte) error {
		return s.Insert(cmd.Context(), key, plaintext, recipient)
	})
	if err != nil {
		return err
	}
	logger(cfg).Info("Stored generated password as %s", key)
	return nil
}
