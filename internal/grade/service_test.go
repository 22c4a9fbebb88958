package grade

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentportal/internal/shared"
)

// memStore is an in-memory Store for hermetic tests.
type memStore struct {
	records map[string]shared.GradeRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]shared.GradeRecord)}
}

func (st *memStore) Insert(_ context.Context, rec *shared.GradeRecord) error {
	st.records[rec.ID] = *rec
	return nil
}

func (st *memStore) FindByID(_ context.Context, id string) (*shared.GradeRecord, error) {
	rec, ok := st.records[id]
	if !ok {
		return nil, &shared.NotFoundError{Resource: "grade record", ID: id}
	}
	return &rec, nil
}

func (st *memStore) Update(_ context.Context, rec *shared.GradeRecord) error {
	if _, ok := st.records[rec.ID]; !ok {
		return &shared.NotFoundError{Resource: "grade record", ID: rec.ID}
	}
	st.records[rec.ID] = *rec
	return nil
}

func (st *memStore) FindByStudent(_ context.Context, studentID string, page, limit int) ([]shared.GradeRecord, int64, error) {
	var all []shared.GradeRecord
	for _, rec := range st.records {
		if rec.StudentID == studentID {
			all = append(all, rec)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (st *memStore) FindByCourse(_ context.Context, courseID string) ([]shared.GradeRecord, error) {
	var out []shared.GradeRecord
	for _, rec := range st.records {
		if rec.CourseID == courseID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("derives percentage and letter on entry", func(t *testing.T) {
		svc := NewService(newMemStore())

		rec, err := svc.Create(ctx, CreateInput{
			StudentID: "s1", CourseID: "c1",
			MarksEarned: fptr(93), MarksPossible: fptr(100),
		}, "teacher-1")
		require.NoError(t, err)
		require.NotNil(t, rec.Percentage)
		assert.InDelta(t, 93.0, *rec.Percentage, 1e-9)
		assert.Equal(t, shared.GradeA, rec.LetterGrade)
	})

	t.Run("marks not yet entered leave derived values unset", func(t *testing.T) {
		svc := NewService(newMemStore())

		rec, err := svc.Create(ctx, CreateInput{StudentID: "s1", CourseID: "c1"}, "teacher-1")
		require.NoError(t, err)
		assert.Nil(t, rec.Percentage)
		assert.Empty(t, rec.LetterGrade)
	})

	t.Run("zero marks possible rejected before persist", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store)

		_, err := svc.Create(ctx, CreateInput{
			StudentID: "s1", CourseID: "c1",
			MarksEarned: fptr(50), MarksPossible: fptr(0),
		}, "teacher-1")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.Empty(t, store.records)
	})

	t.Run("missing ids", func(t *testing.T) {
		svc := NewService(newMemStore())
		_, err := svc.Create(ctx, CreateInput{CourseID: "c1"}, "teacher-1")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	seed := func(svc *Service) string {
		rec, err := svc.Create(ctx, CreateInput{
			StudentID: "s1", CourseID: "c1",
			MarksEarned: fptr(80), MarksPossible: fptr(100),
		}, "teacher-1")
		require.NoError(t, err)
		return rec.ID
	}

	t.Run("re-derives on every marks change", func(t *testing.T) {
		svc := NewService(newMemStore())
		id := seed(svc)

		rec, err := svc.Update(ctx, id, UpdateInput{MarksEarned: fptr(97)}, "teacher-1")
		require.NoError(t, err)
		require.NotNil(t, rec.Percentage)
		assert.InDelta(t, 97.0, *rec.Percentage, 1e-9)
		assert.Equal(t, shared.GradeAPlus, rec.LetterGrade)
	})

	t.Run("finalized records reject mutation", func(t *testing.T) {
		svc := NewService(newMemStore())
		id := seed(svc)

		final := true
		_, err := svc.Update(ctx, id, UpdateInput{IsFinal: &final}, "teacher-1")
		require.NoError(t, err)

		_, err = svc.Update(ctx, id, UpdateInput{MarksEarned: fptr(100)}, "teacher-1")
		require.Error(t, err)
		assert.True(t, shared.IsConflict(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := NewService(newMemStore())
		_, err := svc.Update(ctx, "nope", UpdateInput{}, "teacher-1")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestMarkIncomplete(t *testing.T) {
	ctx := context.Background()
	admin := &shared.User{ID: "admin-1", Role: shared.RoleAdmin}
	teacher := &shared.User{ID: "teacher-1", Role: shared.RoleTeacher}

	seed := func(svc *Service) string {
		rec, err := svc.Create(ctx, CreateInput{
			StudentID: "s1", CourseID: "c1",
			MarksEarned: fptr(40), MarksPossible: fptr(100),
		}, "teacher-1")
		require.NoError(t, err)
		return rec.ID
	}

	t.Run("admin override sets incomplete", func(t *testing.T) {
		svc := NewService(newMemStore())
		id := seed(svc)

		rec, err := svc.MarkIncomplete(ctx, id, admin)
		require.NoError(t, err)
		assert.Equal(t, shared.GradeI, rec.LetterGrade)
		assert.Nil(t, rec.Percentage)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		svc := NewService(newMemStore())
		id := seed(svc)

		_, err := svc.MarkIncomplete(ctx, id, teacher)
		require.Error(t, err)
		assert.True(t, shared.IsAuthorization(err))
	})
}

func TestCourseStats(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store)

	for i, pct := range []float64{95, 85, 75, 65, 55} {
		earned := pct
		possible := 100.0
		_, err := svc.Create(ctx, CreateInput{
			StudentID: "s" + string(rune('1'+i)), CourseID: "c1",
			MarksEarned: &earned, MarksPossible: &possible,
		}, "teacher-1")
		require.NoError(t, err)
	}
	// One record without marks; only the histogram may see it, and it has no
	// letter either.
	_, err := svc.Create(ctx, CreateInput{StudentID: "s9", CourseID: "c1"}, "teacher-1")
	require.NoError(t, err)

	result, err := svc.CourseStats(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, 5, result.Count)
	assert.InDelta(t, 75.0, result.Mean, 1e-9)
	assert.InDelta(t, 75.0, result.Median, 1e-9)
	assert.InDelta(t, 55.0, result.Min, 1e-9)
	assert.InDelta(t, 95.0, result.Max, 1e-9)
	assert.Equal(t, 1, result.ByLetter[shared.GradeA])
	assert.Equal(t, 1, result.ByLetter[shared.GradeF])

	t.Run("empty course", func(t *testing.T) {
		result, err := svc.CourseStats(ctx, "empty")
		require.NoError(t, err)
		assert.Equal(t, 0, result.Count)
		assert.Zero(t, result.Mean)
	})
}
