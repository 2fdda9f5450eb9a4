package commands

import (
	"github.com/systmms/passmng/internal/cipher"
	"github.com/systmms/passmng/internal/config"
	"github.com/systmms/passmng/internal/logging"
	"github.com/systmms/passmng/internal/store"
)

func logger(cfg *config.Config) *logging.Logger {
	if cfg.Logger == nil {
		cfg.Logger = logging.New(false, true)
	}
	return cfg.Logger
}

// openStore builds the store for this invocation from the resolved root and
// the configured cipher backend.
func openStore(cfg *config.Config) (*store.Store, error) {
	root, err := cfg.StoreDir()
	if err != nil {
		return nil, err
	}
	log := logger(cfg)

	cc := cfg.CipherConfig()
	cc.Logger = log
	c, err := cipher.New(cc)
	if err != nil {
		return nil, err
	}

	log.Debug("Using store %s with %s backend", root, c.Name())
	return store.New(root, c, store.WithLogger(log)), nil
}

// track starts timing op on the configured recorder.
func track(cfg *config.Config, op string) func(error) {
	if cfg.Metrics == nil {
		return func(error) {}
	}
	return cfg.Metrics.Track(op)
}
