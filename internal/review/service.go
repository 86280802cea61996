// Package review implements lease-based assignment of audio items to
// reviewers and the commit of their classifications.
//
// A reviewer calls Acquire to lease one unclassified item, then Commit to
// classify it. Commit appends a history record, moves the item to the new
// category and releases the lease in a single transaction. Leases expire
// lazily: an item whose lease is older than the configured TTL is eligible
// for anyone on the next Acquire.
package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/conf"
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/logger"
	"github.com/denrzv/audio-review-backend/internal/observability/metrics"
)

// defaultDirectoryTTL applies when Config.DirectoryTTL is zero.
const defaultDirectoryTTL = 5 * time.Minute

// UndefinedCategory receives registered items whose file name matches no
// other category.
const UndefinedCategory = "Undefined"

// Config holds the settings the review core consumes.
type Config struct {
	LeaseTTL       time.Duration
	ContentBaseURL string
	CandidateBatch int // random candidates tried per acquire
	MaxPageSize    int
	Unclassified   string        // sentinel category name
	DirectoryTTL   time.Duration // category cache lifetime
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s *conf.Settings) Config {
	return Config{
		LeaseTTL:       s.Review.LeaseTTL(),
		ContentBaseURL: s.Review.ContentBaseURL,
		CandidateBatch: s.Review.CandidateBatch,
		MaxPageSize:    s.Review.MaxPageSize,
		Unclassified:   s.Review.Unclassified,
	}
}

func (c *Config) applyDefaults() {
	if c.CandidateBatch <= 0 {
		c.CandidateBatch = conf.DefaultCandidateBatch
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = conf.DefaultMaxPageSize
	}
	if c.Unclassified == "" {
		c.Unclassified = conf.DefaultUnclassified
	}
	if c.DirectoryTTL <= 0 {
		c.DirectoryTTL = defaultDirectoryTTL
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = conf.DefaultLeaseMinutes * time.Minute
	}
}

// Service is the review core. It is safe for concurrent use.
type Service struct {
	cfg Config
	now func() time.Time

	tx              repository.Transactor
	items           repository.ItemRepository
	reviewers       repository.ReviewerRepository
	classifications repository.ClassificationRepository
	directory       *Directory

	log     logger.Logger
	metrics *metrics.ReviewMetrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger, normally the "review" module logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records review metrics into m.
func WithMetrics(m *metrics.ReviewMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTransactor replaces the default transactor, typically to attach
// datastore metrics.
func WithTransactor(tx repository.Transactor) Option {
	return func(s *Service) { s.tx = tx }
}

// New creates a Service over db.
func New(db *gorm.DB, cfg Config, opts ...Option) *Service {
	cfg.applyDefaults()

	s := &Service{
		cfg:             cfg,
		now:             time.Now,
		tx:              repository.NewTransactor(db, nil),
		items:           repository.NewItemRepository(db),
		reviewers:       repository.NewReviewerRepository(db),
		classifications: repository.NewClassificationRepository(db),
		log:             logger.Global().Module(componentName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.directory = newDirectory(repository.NewCategoryRepository(db), cfg.DirectoryTTL, s.metrics)
	return s
}

// Directory returns the category directory.
func (s *Service) Directory() *Directory {
	return s.directory
}

// traced returns ctx carrying a trace id, generating one when absent.
func traced(ctx context.Context) context.Context {
	if logger.TraceIDFromContext(ctx) != "" {
		return ctx
	}
	return logger.WithTraceID(ctx, uuid.NewString())
}
