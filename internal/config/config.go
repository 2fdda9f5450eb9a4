package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/systmms/passmng/internal/cipher"
	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/generate"
	"github.com/systmms/passmng/internal/logging"
	"github.com/systmms/passmng/internal/metrics"
	pkgexec "github.com/systmms/passmng/pkg/exec"
)

// Environment variables read by passmng.
const (
	EnvRecipient = "RECIPIENT"
	EnvStoreDir  = "PASSMNG_STORE_DIR"
	EnvConfig    = "PASSMNG_CONFIG"
)

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool

	// Flag overrides; empty means unset.
	StoreFlag       string
	MetricsFileFlag string

	Settings *Settings

	// Metrics records command outcomes; nil disables recording.
	Metrics *metrics.Recorder

	// Executor runs the gpg binary. Nil means the real one.
	Executor pkgexec.CommandExecutor
}

// Settings represents the config.yaml structure
type Settings struct {
	Version        int              `yaml:"version"`
	StoreDir       string           `yaml:"store_dir,omitempty"`
	Backend        string           `yaml:"backend,omitempty"`
	GPGBinary      string           `yaml:"gpg_binary,omitempty"`
	GPGHome        string           `yaml:"gpg_home,omitempty"`
	Recipient      string           `yaml:"recipient,omitempty"`
	KeyringAccount string           `yaml:"keyring_account,omitempty"`
	Generate       GenerateSettings `yaml:"generate"`
	MetricsFile    string           `yaml:"metrics_file,omitempty"`
}

// GenerateSettings holds defaults for the generate command.
type GenerateSettings struct {
	Length  int  `yaml:"length,omitempty"`
	Special bool `yaml:"special,omitempty"`
}

// Defaults returns the settings used when no config file exists.
func Defaults() *Settings {
	return &Settings{
		Backend:        cipher.BackendGPG,
		GPGBinary:      cipher.DefaultGPGBinary,
		KeyringAccount: cipher.DefaultKeyringAccount,
		Generate: GenerateSettings{
			Length: generate.DefaultLength,
		},
	}
}

// Load reads and parses the config file. A missing file is not an error:
// the defaults apply.
func (c *Config) Load() error {
	settings := Defaults()

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if c.Logger != nil {
				c.Logger.Debug("No config file at %s, using defaults", c.Path)
			}
			c.Settings = settings
			return nil
		}
		return pmerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return pmerrors.ConfigError{
			Field:      "path",
			Value:      c.Path,
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
			Err:        err,
		}
	}

	if err := settings.Validate(); err != nil {
		return err
	}

	c.Settings = settings
	return nil
}

// Validate checks field values after parsing.
func (s *Settings) Validate() error {
	if s.Version != 0 {
		return pmerrors.ConfigError{
			Field:      "version",
			Value:      s.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your config.yaml file",
		}
	}

	switch s.Backend {
	case cipher.BackendGPG, cipher.BackendKeyring:
	default:
		return pmerrors.ConfigError{
			Field:      "backend",
			Value:      s.Backend,
			Message:    "unknown encryption backend",
			Suggestion: "Use 'gpg' or 'keyring'",
		}
	}

	if s.Generate.Length != 0 && s.Generate.Length < generate.MinLength {
		return pmerrors.ConfigError{
			Field:      "generate.length",
			Value:      s.Generate.Length,
			Message:    "default password length is below the minimum",
			Suggestion: "Use a length of at least 8",
		}
	}
	return nil
}

func (c *Config) settings() *Settings {
	if c.Settings == nil {
		c.Settings = Defaults()
	}
	return c.Settings
}

// StoreDir resolves the store root: --store, then PASSMNG_STORE_DIR, then
// store_dir from the file, then the platform default.
func (c *Config) StoreDir() (string, error) {
	for _, dir := range []string{c.StoreFlag, os.Getenv(EnvStoreDir), c.settings().StoreDir} {
		if dir != "" {
			return expandHome(dir)
		}
	}
	return DefaultStoreDir()
}

// Recipient returns RECIPIENT, falling back to the configured recipient.
func (c *Config) Recipient() string {
	if r := strings.TrimSpace(os.Getenv(EnvRecipient)); r != "" {
		return r
	}
	return c.settings().Recipient
}

// MetricsFile returns the textfile path for metrics, or "" when disabled.
func (c *Config) MetricsFile() string {
	if c.MetricsFileFlag != "" {
		return c.MetricsFileFlag
	}
	return c.settings().MetricsFile
}

// CipherConfig builds the backend configuration from the settings.
func (c *Config) CipherConfig() cipher.Config {
	s := c.settings()
	return cipher.Config{
		Backend:        s.Backend,
		GPGBinary:      s.GPGBinary,
		GPGHome:        s.GPGHome,
		KeyringAccount: s.KeyringAccount,
		Logger:         c.Logger,
		Executor:       c.Executor,
	}
}

// GenerateDefaults returns the configured default length and charset.
func (c *Config) GenerateDefaults() (length int, special bool) {
	g := c.settings().Generate
	length = g.Length
	if length == 0 {
		length = generate.DefaultLength
	}
	return length, g.Special
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", pmerrors.ConfigError{
			Field:      "store_dir",
			Value:      p,
			Message:    "cannot expand ~ without a home directory",
			Suggestion: "Use an absolute path",
			Err:        err,
		}
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
