package review

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/observability/metrics"
)

const allCategoriesKey = "all"

// Directory resolves categories by name or id. Lookups are cached; every
// write through the directory invalidates the cache.
type Directory struct {
	repo    repository.CategoryRepository
	cache   *cache.Cache
	metrics *metrics.ReviewMetrics
}

func newDirectory(repo repository.CategoryRepository, ttl time.Duration, m *metrics.ReviewMetrics) *Directory {
	return &Directory{
		repo:    repo,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
	}
}

func nameKey(name string) string {
	return "name:" + entities.NormalizeCategoryName(name)
}

func idKey(id uint) string {
	return "id:" + strconv.FormatUint(uint64(id), 10)
}

// ByName looks a category up ignoring case. Returns ErrCategoryNotFound
// when no category has that name.
func (d *Directory) ByName(ctx context.Context, name string) (*entities.Category, error) {
	c, err := d.byName(ctx, d.repo, name)
	if err != nil {
		return nil, wrap(err, "lookup_category", "category", name)
	}
	return c, nil
}

// byName resolves through repo on a cache miss, so callers inside a
// transaction read through their own connection.
func (d *Directory) byName(ctx context.Context, repo repository.CategoryRepository, name string) (*entities.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrCategoryNotFound
	}
	key := nameKey(name)
	if v, ok := d.cache.Get(key); ok {
		d.metrics.RecordDirectoryLookup(true)
		c := v.(entities.Category)
		return &c, nil
	}
	d.metrics.RecordDirectoryLookup(false)

	c, err := repo.GetByName(ctx, name)
	if err != nil {
		return nil, fromRepository(err)
	}
	d.remember(c)
	return c, nil
}

// ByID looks a category up by id.
func (d *Directory) ByID(ctx context.Context, id uint) (*entities.Category, error) {
	c, err := d.byID(ctx, d.repo, id)
	if err != nil {
		return nil, wrap(err, "lookup_category", "category_id", id)
	}
	return c, nil
}

func (d *Directory) byID(ctx context.Context, repo repository.CategoryRepository, id uint) (*entities.Category, error) {
	if v, ok := d.cache.Get(idKey(id)); ok {
		d.metrics.RecordDirectoryLookup(true)
		c := v.(entities.Category)
		return &c, nil
	}
	d.metrics.RecordDirectoryLookup(false)

	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err)
	}
	d.remember(c)
	return c, nil
}

// All returns every category ordered by id.
func (d *Directory) All(ctx context.Context) ([]entities.Category, error) {
	if v, ok := d.cache.Get(allCategoriesKey); ok {
		d.metrics.RecordDirectoryLookup(true)
		return append([]entities.Category(nil), v.([]entities.Category)...), nil
	}
	d.metrics.RecordDirectoryLookup(false)

	all, err := d.repo.GetAll(ctx)
	if err != nil {
		return nil, wrap(fromRepository(err), "list_categories")
	}
	d.cache.SetDefault(allCategoriesKey, append([]entities.Category(nil), all...))
	return all, nil
}

// Create adds a category. Names are unique ignoring case and shortcuts
// are a single character.
func (d *Directory) Create(ctx context.Context, name, shortcut string) (*entities.Category, error) {
	c := &entities.Category{Name: name, Shortcut: shortcut}
	err := d.repo.Create(ctx, c)
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return nil, wrap(ErrDuplicateCategory, "create_category", "category", name)
	case err != nil:
		return nil, wrap(fromRepository(err), "create_category", "category", name)
	}
	d.cache.Flush()
	return c, nil
}

// Delete removes a category nothing references.
func (d *Directory) Delete(ctx context.Context, id uint) error {
	if err := d.repo.Delete(ctx, id); err != nil {
		return wrap(fromRepository(err), "delete_category", "category_id", id)
	}
	d.cache.Flush()
	return nil
}

func (d *Directory) remember(c *entities.Category) {
	d.cache.SetDefault(nameKey(c.Name), *c)
	d.cache.SetDefault(idKey(c.ID), *c)
}
