package review

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/denrzv/audio-review-backend/internal/conf"
	"github.com/denrzv/audio-review-backend/internal/datastore"
	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/logger"
	"github.com/denrzv/audio-review-backend/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	if os.Getenv(mysqlITEnv) == "1" {
		// container clients keep background connections alive past the tests
		os.Exit(m.Run())
	}
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

const testLeaseTTL = 15 * time.Minute

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// hookTransactor lets a test run writes between a commit's history append
// and its item update, inside the commit transaction.
type hookTransactor struct {
	inner repository.Transactor

	mu   sync.Mutex
	hook func(ctx context.Context, tx *repository.Tx, itemID uint) error
}

func (t *hookTransactor) beforeApply(fn func(ctx context.Context, tx *repository.Tx, itemID uint) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hook = fn
}

func (t *hookTransactor) InTx(ctx context.Context, fn func(tx *repository.Tx) error) error {
	t.mu.Lock()
	hook := t.hook
	t.mu.Unlock()

	return t.inner.InTx(ctx, func(tx *repository.Tx) error {
		if hook == nil {
			return fn(tx)
		}
		hooked := *tx
		hooked.Items = &hookedItems{ItemRepository: tx.Items, tx: tx, hook: hook}
		return fn(&hooked)
	})
}

type hookedItems struct {
	repository.ItemRepository
	tx   *repository.Tx
	hook func(ctx context.Context, tx *repository.Tx, itemID uint) error
}

func (r *hookedItems) ApplyClassification(ctx context.Context, id, version, categoryID uint) (bool, error) {
	if err := r.hook(ctx, r.tx, id); err != nil {
		return false, err
	}
	return r.ItemRepository.ApplyClassification(ctx, id, version, categoryID)
}

type harness struct {
	svc      *Service
	mgr      datastore.Manager
	tx       *hookTransactor
	clock    *testClock
	registry *prometheus.Registry
	uploader *entities.Reviewer
}

var defaultSeeds = []conf.CategorySeed{
	{Name: "Voicemail", Shortcut: "v"},
	{Name: "Speech", Shortcut: "s"},
	{Name: "Music", Shortcut: "m"},
	{Name: "Silence", Shortcut: "n"},
	{Name: UndefinedCategory, Shortcut: "u"},
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithSeeds(t, defaultSeeds)
}

func newHarnessWithSeeds(t *testing.T, seeds []conf.CategorySeed) *harness {
	t.Helper()

	settings := testSettings(seeds)
	settings.Database.Type = conf.DatabaseSQLite
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "review.db")
	settings.Database.SQLite.BusyTimeoutMs = 10_000
	return openHarness(t, settings)
}

// testSettings returns review settings without a database section.
func testSettings(seeds []conf.CategorySeed) *conf.Settings {
	settings := &conf.Settings{}
	settings.Review.LeaseMinutes = int(testLeaseTTL / time.Minute)
	settings.Review.ContentBaseURL = "http://review.test"
	settings.Review.Unclassified = conf.DefaultUnclassified
	settings.Categories = seeds
	return settings
}

// openHarness opens the configured database, migrates it and builds a
// Service over it.
func openHarness(t *testing.T, settings *conf.Settings) *harness {
	t.Helper()

	log := logger.NewSlogLogger(nil, logger.LogLevelError, time.UTC)
	mgr, err := datastore.Open(settings, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	require.NoError(t, mgr.Initialize(context.Background()))

	registry := prometheus.NewRegistry()
	m, err := metrics.NewReviewMetrics(registry)
	require.NoError(t, err)

	clock := newTestClock()
	tx := &hookTransactor{inner: repository.NewTransactor(mgr.DB(), nil)}
	svc := New(mgr.DB(), ConfigFromSettings(settings),
		WithClock(clock.Now),
		WithLogger(log.Module(componentName)),
		WithMetrics(m),
		WithTransactor(tx))

	h := &harness{svc: svc, mgr: mgr, tx: tx, clock: clock, registry: registry}
	h.uploader = h.reviewer(t, "uploader")
	return h
}

func (h *harness) reviewer(t *testing.T, username string) *entities.Reviewer {
	t.Helper()
	r, err := h.svc.AddReviewer(context.Background(), username)
	require.NoError(t, err)
	return r
}

func (h *harness) register(t *testing.T, filename string) *ItemView {
	t.Helper()
	v, err := h.svc.Register(context.Background(), h.uploader.ID, filename, "")
	require.NoError(t, err)
	return v
}

// itemRow reads the raw item row.
func (h *harness) itemRow(t *testing.T, id uint) entities.Item {
	t.Helper()
	var item entities.Item
	require.NoError(t, h.mgr.DB().Preload("CurrentCategory").First(&item, id).Error)
	return item
}

func (h *harness) historyCount(t *testing.T, itemID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.mgr.DB().Model(&entities.Classification{}).Where("item_id = ?", itemID).Count(&n).Error)
	return n
}

// counter returns the value of the counter series matching the label
// name/value pairs, or 0 when the series does not exist yet.
func (h *harness) counter(t *testing.T, name string, labels ...string) float64 {
	t.Helper()
	families, err := h.registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if hasLabels(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabels(pairs []*dto.LabelPair, want []string) bool {
	for i := 0; i+1 < len(want); i += 2 {
		found := false
		for _, p := range pairs {
			if p.GetName() == want[i] && p.GetValue() == want[i+1] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.applyDefaults()
	assert.Equal(t, conf.DefaultCandidateBatch, cfg.CandidateBatch)
	assert.Equal(t, conf.DefaultMaxPageSize, cfg.MaxPageSize)
	assert.Equal(t, conf.DefaultUnclassified, cfg.Unclassified)
	assert.Equal(t, 15*time.Minute, cfg.LeaseTTL)
	assert.Equal(t, defaultDirectoryTTL, cfg.DirectoryTTL)
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()

	s := &conf.Settings{}
	s.Review.LeaseMinutes = 3
	s.Review.ContentBaseURL = "https://example.org"
	s.Review.CandidateBatch = 4
	s.Review.MaxPageSize = 20
	s.Review.Unclassified = "Pending"

	cfg := ConfigFromSettings(s)
	assert.Equal(t, 3*time.Minute, cfg.LeaseTTL)
	assert.Equal(t, "https://example.org", cfg.ContentBaseURL)
	assert.Equal(t, 4, cfg.CandidateBatch)
	assert.Equal(t, 20, cfg.MaxPageSize)
	assert.Equal(t, "Pending", cfg.Unclassified)
}

func TestTraced_KeepsExistingTraceID(t *testing.T) {
	t.Parallel()

	ctx := logger.WithTraceID(context.Background(), "fixed")
	assert.Equal(t, "fixed", logger.TraceIDFromContext(traced(ctx)))
	assert.NotEmpty(t, logger.TraceIDFromContext(traced(context.Background())))
}
