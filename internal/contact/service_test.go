package contact

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentportal/internal/email"
	"studentportal/internal/shared"
)

// memStore is an in-memory Store for hermetic tests.
type memStore struct {
	msgs      map[string]shared.ContactMessage
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{msgs: make(map[string]shared.ContactMessage)}
}

func (st *memStore) Insert(_ context.Context, msg *shared.ContactMessage) error {
	if st.insertErr != nil {
		return st.insertErr
	}
	st.msgs[msg.ID] = *msg
	return nil
}

func (st *memStore) FindByID(_ context.Context, id string) (*shared.ContactMessage, error) {
	msg, ok := st.msgs[id]
	if !ok {
		return nil, &shared.NotFoundError{Resource: "contact message", ID: id}
	}
	return &msg, nil
}

func (st *memStore) Update(_ context.Context, msg *shared.ContactMessage) error {
	if _, ok := st.msgs[msg.ID]; !ok {
		return &shared.NotFoundError{Resource: "contact message", ID: msg.ID}
	}
	st.msgs[msg.ID] = *msg
	return nil
}

func (st *memStore) List(_ context.Context, status string, page, limit int) ([]shared.ContactMessage, int64, error) {
	var all []shared.ContactMessage
	for _, msg := range st.msgs {
		if status == "" || msg.Status == status {
			all = append(all, msg)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

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

// recordingMailer records sends and optionally fails them all.
type recordingMailer struct {
	sent    []email.Message
	sendErr error
}

func (m *recordingMailer) Send(_ context.Context, msg email.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	input := SubmitInput{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Message: "I cannot access my course materials.",
	}

	t.Run("persists and notifies", func(t *testing.T) {
		store := newMemStore()
		mailer := &recordingMailer{}
		svc := NewService(store, mailer, "admin@portal.test")

		msg, err := svc.Submit(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, shared.ContactPending, msg.Status)

		stored, err := store.FindByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, input.Message, stored.Message)

		// admin alert first, then submitter acknowledgment
		require.Len(t, mailer.sent, 2)
		assert.Equal(t, "admin@portal.test", mailer.sent[0].ToEmail)
		assert.Equal(t, input.Email, mailer.sent[1].ToEmail)
	})

	t.Run("persistence failure skips all mail and fails the call", func(t *testing.T) {
		store := newMemStore()
		store.insertErr = errors.New("connection reset")
		mailer := &recordingMailer{}
		svc := NewService(store, mailer, "admin@portal.test")

		msg, err := svc.Submit(ctx, input)
		require.Error(t, err)
		assert.Nil(t, msg)
		assert.Empty(t, mailer.sent)
	})

	t.Run("mail failure is silent, record survives", func(t *testing.T) {
		store := newMemStore()
		mailer := &recordingMailer{sendErr: errors.New("smtp unreachable")}
		svc := NewService(store, mailer, "admin@portal.test")

		msg, err := svc.Submit(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, msg)

		_, err = store.FindByID(ctx, msg.ID)
		assert.NoError(t, err)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, &recordingMailer{}, "admin@portal.test")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 45; i++ {
		status := shared.ContactPending
		if i%3 == 0 {
			status = shared.ContactRead
		}
		store.msgs[fmt.Sprintf("msg-%02d", i)] = shared.ContactMessage{
			ID:        fmt.Sprintf("msg-%02d", i),
			Name:      "User",
			Email:     "user@example.com",
			Message:   "hello",
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	t.Run("page count is ceil(total/limit)", func(t *testing.T) {
		msgs, pg, err := svc.List(ctx, "", 1, 20)
		require.NoError(t, err)
		assert.Len(t, msgs, 20)
		assert.EqualValues(t, 45, pg.Total)
		assert.Equal(t, 3, pg.Pages)

		msgs, _, err = svc.List(ctx, "", 3, 20)
		require.NoError(t, err)
		assert.Len(t, msgs, 5)
	})

	t.Run("newest first", func(t *testing.T) {
		msgs, _, err := svc.List(ctx, "", 1, 20)
		require.NoError(t, err)
		require.NotEmpty(t, msgs)
		assert.Equal(t, "msg-44", msgs[0].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		msgs, pg, err := svc.List(ctx, shared.ContactRead, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 15, pg.Total)
		for _, m := range msgs {
			assert.Equal(t, shared.ContactRead, m.Status)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, _, err := svc.List(ctx, "deleted", 1, 20)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()

	seed := func(store *memStore) string {
		store.msgs["m1"] = shared.ContactMessage{
			ID: "m1", Name: "Jane", Email: "jane@example.com",
			Message: "hello", Status: shared.ContactPending, CreatedAt: time.Now(),
		}
		return "m1"
	}

	t.Run("mark read", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, &recordingMailer{}, "admin@portal.test")
		id := seed(store)

		msg, err := svc.MarkRead(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, shared.ContactRead, msg.Status)
	})

	t.Run("reply records and sends", func(t *testing.T) {
		store := newMemStore()
		mailer := &recordingMailer{}
		svc := NewService(store, mailer, "admin@portal.test")
		id := seed(store)

		msg, err := svc.Reply(ctx, id, "We fixed your access.")
		require.NoError(t, err)
		assert.Equal(t, shared.ContactReplied, msg.Status)
		require.NotNil(t, msg.RepliedAt)
		assert.Equal(t, "We fixed your access.", msg.ReplyMessage)

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "jane@example.com", mailer.sent[0].ToEmail)
	})

	t.Run("reply send failure still succeeds", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, &recordingMailer{sendErr: errors.New("down")}, "admin@portal.test")
		id := seed(store)

		msg, err := svc.Reply(ctx, id, "hi")
		require.NoError(t, err)
		assert.Equal(t, shared.ContactReplied, msg.Status)
	})

	t.Run("archive instead of delete", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, &recordingMailer{}, "admin@portal.test")
		id := seed(store)

		msg, err := svc.Archive(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, shared.ContactArchived, msg.Status)

		// archived messages cannot be replied to
		_, err = svc.Reply(ctx, id, "too late")
		require.Error(t, err)
		assert.True(t, shared.IsConflict(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := NewService(newMemStore(), &recordingMailer{}, "admin@portal.test")
		_, err := svc.MarkRead(ctx, "nope")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}
