package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"course-quiz-engine/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CourseLoader fetches a course and its roster from the owning store.
type CourseLoader interface {
	LoadCourse(ctx context.Context, courseID string) (domain.Course, error)
}

// CourseRepository caches course rosters in Redis and falls back to a loader on cache miss.
// The course is stored as:  HSET  course:{courseID} name {name} instructor {teacherID}
// The roster is stored as:  RPUSH course:{courseID}:students {studentID}...
type CourseRepository struct {
	client *redis.Client
	loader CourseLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewCourseRepository(client *redis.Client, loader CourseLoader, ttl time.Duration) *CourseRepository {
	return &CourseRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CourseRepository) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	if course, ok := r.cached(ctx, courseID); ok {
		return course, nil
	}

	result, err, _ := r.sf.Do(courseID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if course, ok := r.cached(ctx, courseID); ok {
			return course, nil
		}

		course, err := r.loader.LoadCourse(ctx, courseID)
		if err != nil {
			return domain.Course{}, err
		}

		courseKey, rosterKey := r.courseKey(courseID), r.rosterKey(courseID)
		ttl := r.ttlWithJitter()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, rosterKey)
		pipe.HSet(ctx, courseKey, "name", course.Name, "instructor", course.InstructorID)
		if len(course.StudentIDs) > 0 {
			ids := make([]interface{}, len(course.StudentIDs))
			for i, id := range course.StudentIDs {
				ids[i] = id
			}
			pipe.RPush(ctx, rosterKey, ids...)
		}
		if ttl > 0 {
			pipe.Expire(ctx, courseKey, ttl)
			pipe.Expire(ctx, rosterKey, ttl)
		}
		// best-effort: a failed write only costs another loader hit
		_, _ = pipe.Exec(ctx)

		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	course := result.(domain.Course)
	course.StudentIDs = append([]string(nil), course.StudentIDs...)
	return course, nil
}

// Invalidate drops the cached course, e.g. after enrolment changes.
func (r *CourseRepository) Invalidate(ctx context.Context, courseID string) error {
	return r.client.Del(ctx, r.courseKey(courseID), r.rosterKey(courseID)).Err()
}

func (r *CourseRepository) cached(ctx context.Context, courseID string) (domain.Course, bool) {
	fields, err := r.client.HGetAll(ctx, r.courseKey(courseID)).Result()
	if err != nil || len(fields) == 0 {
		return domain.Course{}, false
	}
	students, err := r.client.LRange(ctx, r.rosterKey(courseID), 0, -1).Result()
	if err != nil {
		return domain.Course{}, false
	}
	return domain.Course{
		ID:           courseID,
		Name:         fields["name"],
		InstructorID: fields["instructor"],
		StudentIDs:   students,
	}, true
}

func (r *CourseRepository) courseKey(courseID string) string {
	return "course:" + courseID
}

func (r *CourseRepository) rosterKey(courseID string) string {
	return "course:" + courseID + ":students"
}

func (r *CourseRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
