package memory

import (
	"context"
	"sort"
	"sync"

	"course-quiz-engine/internal/domain"
)

// Catalog holds users, courses and question banks for a single process run.
// It is the directory, roster loader and question bank the engine is wired to.
type Catalog struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	courses map[string]domain.Course
	banks   map[string][]domain.Question

	watchMu  sync.Mutex
	watchers []func(courseID string)
}

func NewCatalog() *Catalog {
	return &Catalog{
		users:   make(map[string]domain.User),
		courses: make(map[string]domain.Course),
		banks:   make(map[string][]domain.Question),
	}
}

func (c *Catalog) AddUser(u domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[u.ID] = u
}

func (c *Catalog) GetUser(_ context.Context, userID string) (domain.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (c *Catalog) AddCourse(course domain.Course) {
	c.mu.Lock()
	c.courses[course.ID] = cloneCourse(course)
	c.mu.Unlock()
	c.notify(course.ID)
}

// Enroll appends studentID to the roster unless already present.
func (c *Catalog) Enroll(courseID, studentID string) error {
	c.mu.Lock()
	course, ok := c.courses[courseID]
	if !ok {
		c.mu.Unlock()
		return domain.ErrCourseNotFound
	}
	if course.Enrolled(studentID) {
		c.mu.Unlock()
		return nil
	}
	course.StudentIDs = append(course.StudentIDs, studentID)
	c.courses[courseID] = course
	c.mu.Unlock()
	c.notify(courseID)
	return nil
}

// OnRosterChange registers fn to be called after a course or its roster
// changes. Callbacks run outside the catalog lock and may read it.
func (c *Catalog) OnRosterChange(fn func(courseID string)) {
	c.watchMu.Lock()
	c.watchers = append(c.watchers, fn)
	c.watchMu.Unlock()
}

func (c *Catalog) notify(courseIDs ...string) {
	c.watchMu.Lock()
	watchers := append(([]func(string))(nil), c.watchers...)
	c.watchMu.Unlock()
	for _, id := range courseIDs {
		for _, fn := range watchers {
			fn(id)
		}
	}
}

func (c *Catalog) LoadCourse(_ context.Context, courseID string) (domain.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	course, ok := c.courses[courseID]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return cloneCourse(course), nil
}

// Questions returns copies of the course bank in authoring order.
func (c *Catalog) Questions(_ context.Context, courseID string) ([]domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.courses[courseID]; !ok {
		return nil, domain.ErrCourseNotFound
	}
	return domain.CloneQuestions(c.banks[courseID]), nil
}

func (c *Catalog) AddQuestion(_ context.Context, courseID string, q domain.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.courses[courseID]; !ok {
		return domain.ErrCourseNotFound
	}
	c.banks[courseID] = append(c.banks[courseID], q.Clone())
	return nil
}

func (c *Catalog) ExportCatalog(_ context.Context) (domain.Catalog, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := domain.Catalog{
		Users:         make([]domain.User, 0, len(c.users)),
		Courses:       make([]domain.Course, 0, len(c.courses)),
		QuestionBanks: make(map[string][]domain.Question, len(c.banks)),
	}
	for _, u := range c.users {
		out.Users = append(out.Users, u)
	}
	for _, course := range c.courses {
		out.Courses = append(out.Courses, cloneCourse(course))
	}
	for id, qs := range c.banks {
		out.QuestionBanks[id] = domain.CloneQuestions(qs)
	}
	sort.Slice(out.Users, func(i, j int) bool { return out.Users[i].ID < out.Users[j].ID })
	sort.Slice(out.Courses, func(i, j int) bool { return out.Courses[i].ID < out.Courses[j].ID })
	return out, nil
}

// ImportCatalog replaces the catalog contents.
func (c *Catalog) ImportCatalog(_ context.Context, cat domain.Catalog) error {
	for _, qs := range cat.QuestionBanks {
		for _, q := range qs {
			if err := q.Validate(); err != nil {
				return err
			}
		}
	}

	users := make(map[string]domain.User, len(cat.Users))
	for _, u := range cat.Users {
		users[u.ID] = u
	}
	courses := make(map[string]domain.Course, len(cat.Courses))
	for _, course := range cat.Courses {
		courses[course.ID] = cloneCourse(course)
	}
	banks := make(map[string][]domain.Question, len(cat.QuestionBanks))
	for id, qs := range cat.QuestionBanks {
		banks[id] = domain.CloneQuestions(qs)
	}

	c.mu.Lock()
	changed := make([]string, 0, len(c.courses)+len(courses))
	for id := range c.courses {
		if _, ok := courses[id]; !ok {
			changed = append(changed, id)
		}
	}
	for id := range courses {
		changed = append(changed, id)
	}
	c.users, c.courses, c.banks = users, courses, banks
	c.mu.Unlock()

	sort.Strings(changed)
	c.notify(changed...)
	return nil
}
