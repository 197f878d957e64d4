package coursestore

import (
	"context"
	"time"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/domain/entity"

	"github.com/patrickmn/go-cache"
)

// CachedRepository keeps found courses in memory for a short time. Misses and
// failures always go to the wrapped repository.
type CachedRepository struct {
	inner port.CourseRepository
	cache *cache.Cache
}

// NewCachedRepository wraps inner. A non-positive ttl disables caching and
// returns inner unchanged.
func NewCachedRepository(inner port.CourseRepository, ttl time.Duration) port.CourseRepository {
	if ttl <= 0 {
		return inner
	}
	return &CachedRepository{inner: inner, cache: cache.New(ttl, 2*ttl)}
}

func (r *CachedRepository) GetCourseGoal(ctx context.Context, courseID string) (*entity.CourseGoal, error) {
	if v, ok := r.cache.Get(courseID); ok {
		course := v.(entity.CourseGoal)
		return &course, nil
	}
	course, err := r.inner.GetCourseGoal(ctx, courseID)
	if err != nil || course == nil {
		return course, err
	}
	r.cache.SetDefault(courseID, *course)
	return course, nil
}
