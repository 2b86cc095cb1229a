package cache

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/neomorfeo/coursereg/internal/domain"
)

const (
	DefaultExpiration      = 30 * time.Second
	DefaultCleanupInterval = 5 * time.Minute

	listKey = "courses"
)

// CourseRepository caches the course list in memory. Any write through it
// drops the cached list. Single-course reads always go to the store, so the
// capacity checks never see a stale count.
type CourseRepository struct {
	next  domain.CourseRepository
	cache *gocache.Cache

	// gen counts writes. A list read from the store is kept only if no
	// write finished while it was in flight.
	mu  sync.Mutex
	gen uint64
}

// Compile-time check: CourseRepository implements domain.CourseRepository.
var _ domain.CourseRepository = (*CourseRepository)(nil)

// NewCourseRepository wraps next with a list cache that expires after ttl.
func NewCourseRepository(next domain.CourseRepository, ttl time.Duration) *CourseRepository {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	return &CourseRepository{
		next:  next,
		cache: gocache.New(ttl, DefaultCleanupInterval),
	}
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	if v, found := r.cache.Get(listKey); found {
		if courses, ok := v.([]domain.Course); ok {
			return slices.Clone(courses), nil
		}
		slog.ErrorContext(ctx, "wrong type in course cache", "key", listKey)
	}

	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()

	courses, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.gen {
		r.cache.SetDefault(listKey, slices.Clone(courses))
	}
	return courses, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (domain.Course, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CourseRepository) Create(ctx context.Context, c domain.Course) error {
	defer r.invalidate()
	return r.next.Create(ctx, c)
}

func (r *CourseRepository) Update(ctx context.Context, c domain.Course) error {
	defer r.invalidate()
	return r.next.Update(ctx, c)
}

func (r *CourseRepository) UpdateParticipants(ctx context.Context, id string, count int) error {
	defer r.invalidate()
	return r.next.UpdateParticipants(ctx, id, count)
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	defer r.invalidate()
	return r.next.Delete(ctx, id)
}

func (r *CourseRepository) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.cache.Delete(listKey)
}
