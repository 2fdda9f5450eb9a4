package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmerrors "github.com/systmms/passmng/internal/errors"
)

func TestObserve(t *testing.T) {
	t.Parallel()

	r := New()

	r.Observe("insert", time.Now(), nil)
	r.Observe("insert", time.Now(), nil)
	r.Observe("insert", time.Now(), errors.New("boom"))
	r.Observe("show", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operationsTotal.WithLabelValues("insert", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operationsTotal.WithLabelValues("insert", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operationsTotal.WithLabelValues("show", ResultSuccess)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.operationDuration))
}

func TestTrack(t *testing.T) {
	t.Parallel()

	r := New()

	done := r.Track("list")
	done(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.operationsTotal.WithLabelValues("list", ResultSuccess)))
}

func TestRecordersAreIsolated(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.Observe("remove", time.Now(), nil)

	assert.Equal(t, 0, testutil.CollectAndCount(b.operationsTotal))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	r := New()
	r.Observe("generate", time.Now(), nil)
	path := filepath.Join(t.TempDir(), "passmng.prom")

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `passmng_operations_total{operation="generate",result="success"} 1`)
	assert.Contains(t, string(data), "passmng_operation_duration_seconds_bucket")
}

func TestWriteTextfileMissingDir(t *testing.T) {
	t.Parallel()

	r := New()

	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "passmng.prom"))

	assert.ErrorIs(t, err, pmerrors.ErrIO)
}
