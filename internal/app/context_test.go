package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denrzv/audio-review-backend/internal/buildinfo"
	"github.com/denrzv/audio-review-backend/internal/conf"
	"github.com/denrzv/audio-review-backend/internal/logger"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	s := &conf.Settings{}
	s.Database.Type = conf.DatabaseSQLite
	s.Database.SQLite.Path = filepath.Join(t.TempDir(), "app.db")
	s.Review.LeaseMinutes = 5
	s.Review.Unclassified = conf.DefaultUnclassified
	s.Categories = []conf.CategorySeed{{Name: "Speech", Shortcut: "s"}, {Name: "Undefined", Shortcut: "u"}}
	s.Logging = logger.LoggingConfig{
		DefaultLevel: "error",
		Console:      &logger.ConsoleOutput{Enabled: true, Level: "error"},
	}
	return s
}

func TestSetup_WiresServiceAndMetrics(t *testing.T) {
	c := NewContext(buildinfo.NewContext("0.1.0", ""))
	require.NoError(t, c.Setup(context.Background(), testSettings(t)))
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	alice, err := c.Review.AddReviewer(ctx, "alice")
	require.NoError(t, err)
	item, err := c.Review.Register(ctx, alice.ID, "speech-1.wav", "")
	require.NoError(t, err)
	assert.Equal(t, "Speech", item.InitialCategory)

	leased, err := c.Review.Acquire(ctx, alice.ID)
	require.NoError(t, err)
	_, err = c.Review.Commit(ctx, leased.ID, alice.ID, "speech")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteMetrics(&buf))
	out := buf.String()
	assert.Contains(t, out, `review_acquisitions_total{outcome="leased"} 1`)
	assert.Contains(t, out, `review_commits_total{outcome="committed"} 1`)
	assert.Contains(t, out, `datastore_db_transactions_total{status="committed"}`)
}

func TestSetup_UnsupportedDatabase(t *testing.T) {
	s := testSettings(t)
	s.Database.Type = "oracle"

	c := NewContext(nil)
	require.Error(t, c.Setup(context.Background(), s))
	assert.NoError(t, c.Close())
}

func TestClose_WithoutSetup(t *testing.T) {
	t.Parallel()

	c := NewContext(nil)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.WriteMetrics(&bytes.Buffer{}))
}
