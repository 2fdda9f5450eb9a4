package commands

import (
	"strings"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/generate"
	"github.com/systmms/passmng/tests/testutil"
)

func parseGenerated(t *testing.T, out string) string {
	t.Helper()

	require.True(t, strings.HasPrefix(out, "Generated: "), "unexpected output %q", out)
	return strings.TrimSuffix(strings.TrimPrefix(out, "Generated: "), "\n")
}

func onlyFrom(s, charset string) bool {
	for _, r := range s {
		if !strings.ContainsRune(charset, r) {
			return false
		}
	}
	return true
}

func TestGenerateCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		length   int
		extended bool
	}{
		{"defaults", nil, generate.DefaultLength, false},
		{"explicit length", []string{"32"}, 32, false},
		{"minimum", []string{"8"}, 8, false},
		{"special", []string{"40", "--special"}, 40, true},
		{"short flag", []string{"-s"}, generate.DefaultLength, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testutil.NewTestConfig(t).Build()

			out, err := execute(t, NewGenerateCommand(cfg), "", tt.args...)
			require.NoError(t, err)

			pw := parseGenerated(t, out)
			assert.Len(t, pw, tt.length)
			if tt.extended {
				assert.True(t, onlyFrom(pw, generate.Extended))
			} else {
				assert.True(t, onlyFrom(pw, generate.Alphanumeric), "got symbols in %q", pw)
			}
		})
	}
}

func TestGenerateCommand_ConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := testutil.NewTestConfig(t).WithGenerate(24, true).Build()

	out, err := execute(t, NewGenerateCommand(cfg), "")
	require.NoError(t, err)
	assert.Len(t, parseGenerated(t, out), 24)

	out, err = execute(t, NewGenerateCommand(cfg), "", "--special=false")
	require.NoError(t, err)
	assert.True(t, onlyFrom(parseGenerated(t, out), generate.Alphanumeric))
}

func TestGenerateCommand_Errors(t *testing.T) {
	t.Parallel()

	cfg := testutil.NewTestConfig(t).Build()

	_, err := execute(t, NewGenerateCommand(cfg), "", "4")
	assert.ErrorIs(t, err, pmerrors.ErrLengthTooSmall)

	_, err = execute(t, NewGenerateCommand(cfg), "", "abc")
	testutil.AssertErrorContains(t, err, "Invalid password length")
	var userErr pmerrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Invalid password length", userErr.Message)

	_, err = execute(t, NewGenerateCommand(cfg), "", "16", "17")
	assert.Error(t, err)
}

func TestGenerateCommand_StoresUnderKey(t *testing.T) {
	t.Parallel()

	b, cfg := newInitializedConfig(t)

	out, err := execute(t, NewGenerateCommand(cfg), "", "20", "--key", "bank")
	require.NoError(t, err)
	pw := parseGenerated(t, out)

	shown, err := execute(t, NewShowCommand(cfg), "", "bank")
	require.NoError(t, err)
	assert.Equal(t, pw+"\n", shown)
	testutil.AssertNoPlaintextOnDisk(t, b.StoreDir(), pw)
	b.Logger.AssertNotContains(t, pw)
}

func TestGenerateCommand_KeyWithoutRecipient(t *testing.T) {
	testutil.SetupTestEnv(t, map[string]string{"RECIPIENT": ""})

	b := testutil.NewTestConfig(t)
	cfg := b.Build()
	_, err := execute(t, NewInitCommand(cfg), "")
	require.NoError(t, err)

	out, err := execute(t, NewGenerateCommand(cfg), "", "--key", "bank")

	require.ErrorIs(t, err, pmerrors.ErrMissingEnvironment)
	assert.Empty(t, out, "nothing is printed when storing fails")
	assert.Equal(t, 0, b.Mock.CallCount())
}

func TestGenerateCommand_RecordsMetrics(t *testing.T) {
	t.Parallel()

	_, cfg := newInitializedConfig(t)

	_, err := execute(t, NewGenerateCommand(cfg), "")
	require.NoError(t, err)
	_, err = execute(t, NewGenerateCommand(cfg), "", "2")
	require.Error(t, err)

	// init (from setup) + generate success + generate error
	count, err := promtestutil.GatherAndCount(cfg.Metrics.Registry(), "passmng_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
