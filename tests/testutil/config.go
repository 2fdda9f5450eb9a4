package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/systmms/passmng/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configurations.
//
// The built Config points at a fresh store directory, uses FakeGPG instead of
// the real gpg binary and logs into a TestLogger:
//
//	b := NewTestConfig(t).WithRecipient("alice@example.org")
//	cfg := b.Build()
//	cmd := commands.NewInsertCommand(cfg)
//	...
//	b.Logger.AssertContains(t, "Added")
type TestConfigBuilder struct {
	settings *config.Settings
	storeDir string
	t        *testing.T

	// Mock is the executor wired into the built Config.
	Mock *MockCommandExecutor

	// Logger captures everything the built Config logs.
	Logger *TestLogger
}

// NewTestConfig creates a builder with default settings and an uninitialized
// store under t.TempDir().
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	return &TestConfigBuilder{
		settings: config.Defaults(),
		storeDir: filepath.Join(t.TempDir(), "password-store"),
		t:        t,
		Mock:     FakeGPG(),
		Logger:   NewTestLogger(t),
	}
}

// WithRecipient sets the recipient used when RECIPIENT is unset.
func (b *TestConfigBuilder) WithRecipient(recipient string) *TestConfigBuilder {
	b.settings.Recipient = recipient
	return b
}

// WithBackend selects the cipher backend.
func (b *TestConfigBuilder) WithBackend(backend string) *TestConfigBuilder {
	b.settings.Backend = backend
	return b
}

// WithGenerate sets the generate defaults.
func (b *TestConfigBuilder) WithGenerate(length int, special bool) *TestConfigBuilder {
	b.settings.Generate = config.GenerateSettings{Length: length, Special: special}
	return b
}

// WithMetricsFile sets metrics_file.
func (b *TestConfigBuilder) WithMetricsFile(path string) *TestConfigBuilder {
	b.settings.MetricsFile = path
	return b
}

// StoreDir returns the store root the built Config resolves to.
func (b *TestConfigBuilder) StoreDir() string {
	return b.storeDir
}

// Settings returns the settings built so far.
func (b *TestConfigBuilder) Settings() *config.Settings {
	return b.settings
}

// Build returns a ready Config. The store directory is passed as the
// --store override so the environment cannot redirect it.
func (b *TestConfigBuilder) Build() *config.Config {
	b.t.Helper()

	settings := *b.settings
	return &config.Config{
		Path:           filepath.Join(b.t.TempDir(), "config.yaml"),
		Logger:         b.Logger.Logger,
		NonInteractive: true,
		StoreFlag:      b.storeDir,
		Settings:       &settings,
		Executor:       b.Mock,
	}
}

// Write marshals the settings to a config.yaml in a temp directory and
// returns its path.
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	settings := *b.settings
	settings.StoreDir = b.storeDir
	data, err := yaml.Marshal(&settings)
	if err != nil {
		b.t.Fatalf("Failed to marshal config: %v", err)
	}
	return WriteTestConfig(b.t, string(data))
}

// WriteTestConfig writes yamlContent to a config.yaml in a temp directory
// and returns its path.
func WriteTestConfig(t *testing.T, yamlContent string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}
