package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"course-quiz-engine/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CourseLoader fetches a course and its roster from the owning store.
type CourseLoader interface {
	LoadCourse(ctx context.Context, courseID string) (domain.Course, error)
}

// rosterNotifier is implemented by loaders that announce roster edits.
type rosterNotifier interface {
	OnRosterChange(fn func(courseID string))
}

// CourseRepository caches rosters with TTL to avoid repeated loader hits.
// When the loader announces roster edits the cached entry is dropped at once,
// so enrolment is visible before the TTL runs out.
type CourseRepository struct {
	loader CourseLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCourse
	// gen counts invalidations per course; a load started before an
	// invalidation must not repopulate the cache with the old roster.
	gen map[string]uint64
}

type cachedCourse struct {
	course    domain.Course
	expiresAt time.Time
}

func NewCourseRepository(loader CourseLoader, ttl time.Duration) *CourseRepository {
	r := &CourseRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCourse),
		gen:    make(map[string]uint64),
	}
	if n, ok := loader.(rosterNotifier); ok {
		n.OnRosterChange(r.Invalidate)
	}
	return r
}

func (r *CourseRepository) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[courseID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return cloneCourse(entry.course), nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(courseID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[courseID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.course, nil
		}
		gen := r.gen[courseID]
		r.mu.RUnlock()

		course, err := r.loader.LoadCourse(ctx, courseID)
		if err != nil {
			return domain.Course{}, err
		}

		r.mu.Lock()
		if r.gen[courseID] == gen {
			r.cache[courseID] = cachedCourse{
				course:    course,
				expiresAt: now.Add(r.ttlWithJitter()),
			}
		}
		r.mu.Unlock()
		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return cloneCourse(result.(domain.Course)), nil
}

// Invalidate drops a cached roster, e.g. after enrolment changes.
func (r *CourseRepository) Invalidate(courseID string) {
	r.mu.Lock()
	delete(r.cache, courseID)
	r.gen[courseID]++
	r.mu.Unlock()
	r.sf.Forget(courseID)
}

func (r *CourseRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func cloneCourse(c domain.Course) domain.Course {
	c.StudentIDs = append([]string(nil), c.StudentIDs...)
	return c
}
