// Package service implements the cache-augmented identification repository:
// cache-aside reads, write-through invalidation, deterministic cache keys.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zlovtnik/nfe-identifications/internal/identification/metrics"
	"github.com/zlovtnik/nfe-identifications/internal/identification/models"
	"github.com/zlovtnik/nfe-identifications/pkg/domainerrors"
)

const (
	itemKeyPrefix = "nfe:id:"
	listKeyPrefix = "nfe:list:"
	listPattern   = listKeyPrefix + "*"
)

// BackingStore is the relational store the repository orchestrates. It is
// the source of truth; every cache entry must be reproducible through it.
type BackingStore interface {
	List(ctx context.Context, page, pageSize int, filter models.ListFilter) ([]models.Identification, uint64, error)
	GetByKey(ctx context.Context, internalKey string) (*models.Identification, error)
	Insert(ctx context.Context, internalKey string, in models.CreateIdentification) error
	Update(ctx context.Context, internalKey string, in models.UpdateIdentification) error
	Delete(ctx context.Context, internalKey string) error
}

// CacheStore is the key-value overlay. Implementations report a miss as
// (false, nil); any error from these methods is logged and absorbed here,
// never propagated to repository callers.
type CacheStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keyOrPattern string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Repository exposes find/create/update/delete over the backing store with
// a cache-aside overlay. Safe for concurrent use; both handles are shared
// and no call holds state across operations.
type Repository struct {
	store   BackingStore
	cache   CacheStore
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRepository constructs the repository. cache may be nil, in which case
// every read goes to the backing store.
func NewRepository(store BackingStore, cache CacheStore, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		store:   store,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// cachedList is the serialized snapshot of one list page.
type cachedList struct {
	Records []models.Identification `json:"records"`
	Total   uint64                  `json:"total"`
}

// List returns one page of identifications and the total count for the
// filter set, serving from cache when possible.
func (r *Repository) List(ctx context.Context, page, pageSize int, filter models.ListFilter) ([]models.Identification, uint64, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveOpLatency("list", time.Since(start)) }()

	if page < 1 || pageSize < 1 {
		return nil, 0, domainerrors.New(domainerrors.CodeBadRequest, "page and page size must be positive")
	}

	key := listKey(page, pageSize, filter)
	var cached cachedList
	if r.cacheGet(ctx, "list", key, &cached) {
		return cached.Records, cached.Total, nil
	}

	records, total, err := r.store.List(ctx, page, pageSize, filter)
	if err != nil {
		r.logger.ErrorContext(ctx, "list identifications failed", "page", page, "page_size", pageSize, "error", err)
		return nil, 0, err
	}

	r.cacheSet(ctx, key, cachedList{Records: records, Total: total})
	r.logger.DebugContext(ctx, "listed identifications", "page", page, "page_size", pageSize, "total", total)
	return records, total, nil
}

// Get returns the record addressed by id, serving from cache when
// possible. A malformed id fails fast with an invalid-identifier error.
func (r *Repository) Get(ctx context.Context, id string) (*models.Identification, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveOpLatency("get", time.Since(start)) }()

	id, err := canonicalID(id)
	if err != nil {
		return nil, err
	}

	key := itemKeyPrefix + id
	var cached models.Identification
	if r.cacheGet(ctx, "get", key, &cached) {
		return &cached, nil
	}

	record, err := r.store.GetByKey(ctx, id)
	if err != nil {
		if !domainerrors.HasCode(err, domainerrors.CodeNotFound) {
			r.logger.ErrorContext(ctx, "get identification failed", "internal_key", id, "error", err)
		}
		return nil, err
	}

	r.cacheSet(ctx, key, record)
	return record, nil
}

// Create validates required fields, mints the internal key, inserts and
// re-reads the canonical stored representation through the non-cached
// query path. List cache entries are invalidated since membership and
// totals may have changed.
func (r *Repository) Create(ctx context.Context, in models.CreateIdentification) (*models.Identification, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveOpLatency("create", time.Since(start)) }()

	if err := validateCreate(in); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	if err := r.store.Insert(ctx, id, in); err != nil {
		r.logger.ErrorContext(ctx, "create identification failed", "internal_key", id, "error", err)
		return nil, err
	}

	record, err := r.store.GetByKey(ctx, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "re-read after insert failed", "internal_key", id, "error", err)
		if domainerrors.HasCode(err, domainerrors.CodeNotFound) {
			return nil, domainerrors.New(domainerrors.CodeCreationFailed, "created record could not be read back")
		}
		return nil, err
	}

	r.invalidate(ctx, listPattern)
	r.metrics.IncrementRecordsCreated()
	r.logger.InfoContext(ctx, "identification created", "internal_key", id)
	return record, nil
}

// Update applies a partial update: supplied fields overwrite, omitted
// fields are preserved. The updated record is re-read through the
// non-cached path; both the item entry and the list pattern are
// invalidated.
func (r *Repository) Update(ctx context.Context, id string, in models.UpdateIdentification) (*models.Identification, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveOpLatency("update", time.Since(start)) }()

	id, err := canonicalID(id)
	if err != nil {
		return nil, err
	}

	if err := r.store.Update(ctx, id, in); err != nil {
		if !domainerrors.HasCode(err, domainerrors.CodeUpdateFailed) {
			r.logger.ErrorContext(ctx, "update identification failed", "internal_key", id, "error", err)
		}
		return nil, err
	}

	record, err := r.store.GetByKey(ctx, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "re-read after update failed", "internal_key", id, "error", err)
		return nil, err
	}

	r.invalidate(ctx, itemKeyPrefix+id)
	r.invalidate(ctx, listPattern)
	r.logger.InfoContext(ctx, "identification updated", "internal_key", id)
	return record, nil
}

// Delete removes the record. Deleting an absent id reports not-found, not
// silent success. Cache entries are invalidated regardless so a stale item
// entry cannot outlive the row it describes.
func (r *Repository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer func() { r.metrics.ObserveOpLatency("delete", time.Since(start)) }()

	id, err := canonicalID(id)
	if err != nil {
		return err
	}

	err = r.store.Delete(ctx, id)

	r.invalidate(ctx, itemKeyPrefix+id)
	r.invalidate(ctx, listPattern)

	if err != nil {
		if !domainerrors.HasCode(err, domainerrors.CodeNotFound) {
			r.logger.ErrorContext(ctx, "delete identification failed", "internal_key", id, "error", err)
		}
		return err
	}
	r.logger.InfoContext(ctx, "identification deleted", "internal_key", id)
	return nil
}

// cacheGet probes the cache. Both a miss and a cache failure report false;
// failures are logged and counted, never surfaced.
func (r *Repository) cacheGet(ctx context.Context, operation, key string, dest any) bool {
	if r.cache == nil {
		return false
	}
	found, err := r.cache.Get(ctx, key, dest)
	if err != nil {
		r.metrics.IncrementCacheError("get")
		r.logger.WarnContext(ctx, "cache get failed, falling through", "key", key, "error", err)
		return false
	}
	if !found {
		r.metrics.IncrementCacheMiss(operation)
		return false
	}
	r.metrics.IncrementCacheHit(operation)
	return true
}

// cacheSet populates the cache with the repository TTL. Failures are
// logged only; the read already succeeded against the source of truth.
func (r *Repository) cacheSet(ctx context.Context, key string, value any) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		r.metrics.IncrementCacheError("set")
		r.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// invalidate removes a key or pattern. A failed invalidation does not fail
// the write; the stale entry self-corrects at TTL expiry.
func (r *Repository) invalidate(ctx context.Context, keyOrPattern string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, keyOrPattern); err != nil {
		r.metrics.IncrementCacheError("delete")
		r.logger.WarnContext(ctx, "cache invalidation failed", "key", keyOrPattern, "error", err)
	}
}

// listKey derives the deterministic cache key for one page of one filter
// set. Inactive filters contribute their empty-string placeholder so the
// key shape is fixed.
func listKey(page, pageSize int, f models.ListFilter) string {
	return fmt.Sprintf("%s%d:%d:%s:%s:%s:%s:%s",
		listKeyPrefix, page, pageSize, f.NatOp, f.NNF, f.TpNF, f.DhEmi, f.Search)
}

// canonicalID validates an identifier and normalizes it to the canonical
// hyphenated lowercase form used in cache keys and storage lookups.
func canonicalID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInvalidIdentifier, "malformed identifier")
	}
	return u.String(), nil
}

func validateCreate(in models.CreateIdentification) error {
	if in.CUF == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "c_uf is required")
	}
	if in.NatOp == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "nat_op is required")
	}
	if in.NNF == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "n_nf is required")
	}
	if in.DhEmi.IsZero() {
		return domainerrors.New(domainerrors.CodeBadRequest, "dh_emi is required")
	}
	return nil
}
