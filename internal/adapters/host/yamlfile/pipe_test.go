package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

func newTestPipe(t *testing.T) (*Pipe, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.yaml")
	pipe, err := Open(path, "apex_activities", nil)
	require.NoError(t, err)
	return pipe, path
}

func table(t *testing.T, timestamps ...string) domain.ActivityTable {
	t.Helper()
	records := make([]domain.RawRecord, 0, len(timestamps))
	for _, ts := range timestamps {
		records = append(records, domain.RawRecord{"timestamp": ts, "symbol": "VTI", "netAmount": 1.25})
	}
	out, err := domain.Normalize([]domain.CategoryPayload{{Category: domain.CategoryTrades, Records: records}})
	require.NoError(t, err)
	return out
}

func TestWriteAndSyncTime(t *testing.T) {
	pipe, path := newTestPipe(t)
	ctx := context.Background()

	got, err := pipe.SyncTime(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, pipe.Write(ctx, table(t, "2024-01-02T00:00:00", "2024-01-01T00:00:00")))

	got, err = pipe.SyncTime(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "target: apex_activities")
	assert.Contains(t, string(data), "symbol: VTI")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())
}

func TestWriteReplacesFromFirstTimestamp(t *testing.T) {
	pipe, _ := newTestPipe(t)
	ctx := context.Background()

	require.NoError(t, pipe.Write(ctx, table(t, "2024-01-01T00:00:00", "2024-01-05T00:00:00")))
	require.NoError(t, pipe.Write(ctx, table(t, "2024-01-04T00:00:00", "2024-01-06T00:00:00")))

	doc, err := pipe.read()
	require.NoError(t, err)
	require.Len(t, doc.Rows, 3)

	var order []time.Time
	for _, row := range doc.Rows {
		ts, err := rowTimestamp(row)
		require.NoError(t, err)
		order = append(order, ts)
	}
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
	}, order)
}

func TestColumnsRoundTrip(t *testing.T) {
	pipe, path := newTestPipe(t)
	ctx := context.Background()

	assert.Empty(t, pipe.Columns())
	require.NoError(t, pipe.SetColumns(ctx, map[string]string{"datetime": "timestamp"}))

	reopened, err := Open(path, "apex_activities", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"datetime": "timestamp"}, reopened.Columns())
}

func TestDerivedAggregatesUnsupported(t *testing.T) {
	pipe, _ := newTestPipe(t)

	assert.Equal(t, "file", pipe.InstanceConnector().Type())
	exists, err := pipe.DerivedExists(context.Background(), "running_dividends")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, pipe.Register(context.Background(), ports.DerivedDefinition{Name: "x"}), ErrDerivedUnsupported)
}

func TestReadRejectsForeignTarget(t *testing.T) {
	pipe, path := newTestPipe(t)
	require.NoError(t, os.WriteFile(path, []byte("target: other\nrows: []\n"), 0o600))

	_, err := pipe.SyncTime(context.Background())
	assert.Error(t, err)
}
