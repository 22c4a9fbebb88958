package course

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentportal/internal/shared"
)

// memStore is an in-memory Store whose AddStudent mimics Mongo's atomic
// $addToSet semantics.
type memStore struct {
	mu      sync.Mutex
	courses map[string]*shared.Course
}

func newMemStore() *memStore {
	return &memStore{courses: make(map[string]*shared.Course)}
}

func (st *memStore) Find(_ context.Context, filter Filter) ([]shared.Course, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []shared.Course
	for _, c := range st.courses {
		if !filter.IncludeInactive && !c.IsActive {
			continue
		}
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.Semester > 0 && c.Semester != filter.Semester {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (st *memStore) FindByID(_ context.Context, id string) (*shared.Course, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	c, ok := st.courses[id]
	if !ok {
		return nil, &shared.NotFoundError{Resource: "course", ID: id}
	}
	cp := *c
	cp.EnrolledStudents = append([]string(nil), c.EnrolledStudents...)
	return &cp, nil
}

func (st *memStore) Insert(_ context.Context, c *shared.Course) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := *c
	st.courses[c.ID] = &cp
	return nil
}

func (st *memStore) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	c, ok := st.courses[id]
	if !ok {
		return &shared.NotFoundError{Resource: "course", ID: id}
	}
	if v, ok := fields["title"]; ok {
		c.Title = v.(string)
	}
	if v, ok := fields["credits"]; ok {
		c.Credits = v.(int32)
	}
	if v, ok := fields["is_active"]; ok {
		c.IsActive = v.(bool)
	}
	return nil
}

func (st *memStore) AddStudent(_ context.Context, courseID, userID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	c, ok := st.courses[courseID]
	if !ok {
		return &shared.NotFoundError{Resource: "course", ID: courseID}
	}
	for _, id := range c.EnrolledStudents {
		if id == userID {
			return nil
		}
	}
	c.EnrolledStudents = append(c.EnrolledStudents, userID)
	return nil
}

func (st *memStore) AddMaterial(_ context.Context, courseID string, m shared.Material) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	c, ok := st.courses[courseID]
	if !ok {
		return &shared.NotFoundError{Resource: "course", ID: courseID}
	}
	c.Materials = append(c.Materials, m)
	return nil
}

func seedCourse(store *memStore, id string, active bool) {
	store.courses[id] = &shared.Course{
		ID: id, Code: "CS101", Title: "Intro to Computing",
		InstructorID: "teacher-1", Credits: 3, Semester: 1,
		EnrolledStudents: []string{}, IsActive: active,
	}
}

func countOccurrences(ids []string, id string) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()

	t.Run("adds the student once", func(t *testing.T) {
		store := newMemStore()
		seedCourse(store, "c1", true)
		svc := NewService(store)

		require.NoError(t, svc.Enroll(ctx, "c1", "student-1"))

		course, err := store.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, 1, countOccurrences(course.EnrolledStudents, "student-1"))
	})

	t.Run("double enrollment is an idempotent success", func(t *testing.T) {
		store := newMemStore()
		seedCourse(store, "c1", true)
		svc := NewService(store)

		require.NoError(t, svc.Enroll(ctx, "c1", "student-1"))
		require.NoError(t, svc.Enroll(ctx, "c1", "student-1"))

		course, err := store.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, 1, countOccurrences(course.EnrolledStudents, "student-1"))
	})

	t.Run("uniqueness holds under concurrent enrollment", func(t *testing.T) {
		store := newMemStore()
		seedCourse(store, "c1", true)
		svc := NewService(store)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, svc.Enroll(ctx, "c1", "student-1"))
			}()
		}
		wg.Wait()

		course, err := store.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, 1, countOccurrences(course.EnrolledStudents, "student-1"))
	})

	t.Run("unknown course", func(t *testing.T) {
		svc := NewService(newMemStore())
		err := svc.Enroll(ctx, "missing", "student-1")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("inactive course is treated as absent", func(t *testing.T) {
		store := newMemStore()
		seedCourse(store, "c1", false)
		svc := NewService(store)

		err := svc.Enroll(ctx, "c1", "student-1")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestMaterials(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedCourse(store, "c1", true)
	store.courses["c1"].Materials = []shared.Material{{Title: "Syllabus", Path: "materials/syllabus.pdf"}}
	store.courses["c1"].EnrolledStudents = []string{"student-1"}
	svc := NewService(store)

	t.Run("enrolled student", func(t *testing.T) {
		mats, err := svc.Materials(ctx, "c1", &shared.User{ID: "student-1", Role: shared.RoleStudent})
		require.NoError(t, err)
		assert.Len(t, mats, 1)
	})

	t.Run("instructor", func(t *testing.T) {
		_, err := svc.Materials(ctx, "c1", &shared.User{ID: "teacher-1", Role: shared.RoleTeacher})
		assert.NoError(t, err)
	})

	t.Run("admin", func(t *testing.T) {
		_, err := svc.Materials(ctx, "c1", &shared.User{ID: "admin-1", Role: shared.RoleAdmin})
		assert.NoError(t, err)
	})

	t.Run("attach adds to the material list", func(t *testing.T) {
		require.NoError(t, svc.AttachMaterial(ctx, "c1", shared.Material{Title: "Week 1 Slides", Path: "materials/week1.pdf"}))

		mats, err := svc.Materials(ctx, "c1", &shared.User{ID: "admin-1", Role: shared.RoleAdmin})
		require.NoError(t, err)
		assert.Len(t, mats, 2)
	})

	t.Run("attach to unknown course", func(t *testing.T) {
		err := svc.AttachMaterial(ctx, "missing", shared.Material{Title: "x", Path: "y"})
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("outsider is rejected", func(t *testing.T) {
		_, err := svc.Materials(ctx, "c1", &shared.User{ID: "student-2", Role: shared.RoleStudent})
		require.Error(t, err)
		assert.True(t, shared.IsAuthorization(err))
	})
}

func TestCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store)

	course, err := svc.Create(ctx, CreateInput{Code: "CS102", Title: "Data Structures", Credits: 3}, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", course.InstructorID)
	assert.True(t, course.IsActive)
	assert.NotNil(t, course.EnrolledStudents)

	t.Run("missing required fields", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{Title: "No Code", Credits: 3}, "teacher-1")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("partial update", func(t *testing.T) {
		title := "Advanced Data Structures"
		updated, err := svc.Update(ctx, course.ID, UpdateInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, int32(3), updated.Credits)
	})

	t.Run("invalid credits", func(t *testing.T) {
		credits := int32(0)
		_, err := svc.Update(ctx, course.ID, UpdateInput{Credits: &credits})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}
