package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/diogo/chatweb/internal/api"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

type staticIdentity struct {
	id models.UserID
	ok bool
}

func (s *staticIdentity) Identity() (models.UserID, bool) { return s.id, s.ok }

type recordingDrafts struct {
	mu    sync.Mutex
	sends [][]models.Message
	users []models.UserID
}

func (r *recordingDrafts) Send(userID models.UserID, messages []models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	r.sends = append(r.sends, messages)
}

func loggedIn() *staticIdentity { return &staticIdentity{id: 7, ok: true} }

func seed(c *Controller, msgs ...models.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msgs...)
	c.mu.Unlock()
}

func TestSubmit_BlankIsNoop(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		backend := &api.MockClient{ChatReply: "x"}
		c := New(backend, loggedIn())

		reply, err := c.Submit(context.Background(), input)
		require.NoError(t, err)
		assert.Empty(t, reply)
		assert.Zero(t, c.Len())
		assert.Zero(t, backend.ChatCalls, "no network call for %q", input)
	}
}

func TestSubmit_Success(t *testing.T) {
	backend := &api.MockClient{ChatReply: "Hello!"}
	c := New(backend, loggedIn())
	seed(c, models.Message{Role: models.RoleUser, Content: "earlier"},
		models.Message{Role: models.RoleAssistant, Content: "reply"})

	reply, err := c.Submit(context.Background(), "  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)

	msgs := c.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "hi"}, msgs[2])
	assert.Equal(t, models.Message{Role: models.RoleAssistant, Content: "Hello!"}, msgs[3])

	assert.Equal(t, models.UserID(7), backend.LastChatUser)
	assert.Equal(t, msgs[:3], backend.LastChat, "full history including the new message is sent")
	assert.False(t, c.Busy())
}

func TestSubmit_FailureKeepsOnlyUserMessage(t *testing.T) {
	backend := &api.MockClient{ChatErr: apierrors.NewAPIError(500, "/chat", "boom")}
	c := New(backend, loggedIn())

	_, err := c.Submit(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, "Backend error: 500 Internal Server Error", apierrors.UserMessage(err))

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.False(t, c.Busy(), "a failure must leave the controller re-submittable")

	backend.ChatErr = nil
	backend.ChatReply = "ok"
	_, err = c.Submit(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
}

func TestSubmit_RequiresIdentity(t *testing.T) {
	backend := &api.MockClient{}
	c := New(backend, &staticIdentity{})

	_, err := c.Submit(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, "You must be logged in to chat", apierrors.UserMessage(err))
	assert.Equal(t, 1, c.Len(), "a failed submission keeps the user message")
	assert.Zero(t, backend.ChatCalls)
	assert.False(t, c.Busy())

	_, err = c.Submit(context.Background(), "hi again")
	require.Error(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "hi again", c.Messages()[1].Content)
}

func TestBegin_RejectsReentry(t *testing.T) {
	backend := &api.MockClient{ChatReply: "ok"}
	c := New(backend, loggedIn())

	turn, err := c.Begin("first")
	require.NoError(t, err)
	require.NotNil(t, turn)
	assert.Equal(t, TurnPending, turn.State())
	assert.True(t, c.Busy())

	_, err = c.Begin("second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Commit(turn, "done"))
	assert.Equal(t, TurnCommitted, turn.State())
	assert.Equal(t, "done", turn.Reply())
	assert.ErrorIs(t, c.Commit(turn, "again"), ErrTurnSettled)
	assert.ErrorIs(t, c.Rollback(turn, errors.New("late")), ErrTurnSettled)
	assert.Equal(t, 2, c.Len())
}

func TestRollback(t *testing.T) {
	c := New(&api.MockClient{}, loggedIn())

	turn, err := c.Begin("q")
	require.NoError(t, err)

	cause := errors.New("offline")
	require.NoError(t, c.Rollback(turn, cause))
	assert.Equal(t, TurnRolledBack, turn.State())
	assert.Equal(t, cause, turn.Err())
	assert.Equal(t, "rolled-back", turn.State().String())
	assert.False(t, c.Busy())
	assert.Equal(t, 1, c.Len())
}

func TestCommit_AfterResetIsDropped(t *testing.T) {
	c := New(&api.MockClient{}, loggedIn())

	turn, err := c.Begin("q")
	require.NoError(t, err)
	c.Reset()

	require.NoError(t, c.Commit(turn, "stale"))
	assert.Zero(t, c.Len())
}

func TestPersist(t *testing.T) {
	msg := models.Message{Role: models.RoleUser, Content: "hi"}

	t.Run("no messages is a no-op", func(t *testing.T) {
		backend := &api.MockClient{}
		c := New(backend, loggedIn())

		require.NoError(t, c.Persist(context.Background(), true))
		assert.Zero(t, backend.SaveCount())
		assert.Zero(t, backend.UpdateCount())
	})

	t.Run("no identity is a no-op", func(t *testing.T) {
		backend := &api.MockClient{}
		c := New(backend, &staticIdentity{})
		seed(c, msg)

		require.NoError(t, c.Persist(context.Background(), false))
		assert.Zero(t, backend.SaveCount())
	})

	t.Run("first save creates and records id", func(t *testing.T) {
		backend := &api.MockClient{SaveID: 31}
		c := New(backend, loggedIn())
		seed(c, msg)

		require.NoError(t, c.Persist(context.Background(), false))
		assert.Equal(t, 1, backend.SaveCount())
		assert.False(t, backend.Saves[0].GenerateSummary)

		id, ok := c.SessionID()
		assert.True(t, ok)
		assert.Equal(t, int64(31), id)
	})

	t.Run("existing session without summary updates", func(t *testing.T) {
		backend := &api.MockClient{SaveID: 31}
		c := New(backend, loggedIn())
		seed(c, msg)
		require.NoError(t, c.Persist(context.Background(), false))

		seed(c, models.Message{Role: models.RoleAssistant, Content: "yo"})
		require.NoError(t, c.Persist(context.Background(), false))

		assert.Equal(t, 1, backend.SaveCount())
		require.Equal(t, 1, backend.UpdateCount())
		assert.Equal(t, int64(31), backend.Updates[0].SessionID)
		assert.Len(t, backend.Updates[0].Messages, 2)
	})

	t.Run("summary always creates", func(t *testing.T) {
		backend := &api.MockClient{SaveID: 31}
		c := New(backend, loggedIn())
		seed(c, msg)
		require.NoError(t, c.Persist(context.Background(), false))

		backend.SaveID = 32
		require.NoError(t, c.Persist(context.Background(), true))

		assert.Equal(t, 2, backend.SaveCount())
		assert.Zero(t, backend.UpdateCount())
		assert.True(t, backend.Saves[1].GenerateSummary)
		id, _ := c.SessionID()
		assert.Equal(t, int64(32), id)
	})

	t.Run("failed update falls back to create", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		backend := &api.MockClient{SaveID: 5, Active: &api.ActiveSession{SessionID: 4, Messages: []models.Message{msg}}}
		c := New(backend, loggedIn(), WithLogger(zap.New(core)))
		require.True(t, c.LoadActiveSession(context.Background()))

		backend.UpdateErr = errors.New("gone")
		require.NoError(t, c.Persist(context.Background(), false))

		assert.Equal(t, 1, backend.UpdateCount())
		assert.Equal(t, 1, backend.SaveCount())
		id, _ := c.SessionID()
		assert.Equal(t, int64(5), id)
		assert.Equal(t, 1, logs.FilterMessage("session update failed, saving as new session").Len())
	})

	t.Run("failed create keeps previous id", func(t *testing.T) {
		backend := &api.MockClient{SaveErr: errors.New("down")}
		c := New(backend, loggedIn())
		seed(c, msg)

		assert.Error(t, c.Persist(context.Background(), true))
		_, ok := c.SessionID()
		assert.False(t, ok)
	})
}

func TestPersistBestEffort(t *testing.T) {
	drafts := &recordingDrafts{}
	c := New(&api.MockClient{}, loggedIn(), WithDraftSender(drafts))

	c.PersistBestEffort()
	assert.Empty(t, drafts.sends, "nothing to save")

	seed(c, models.Message{Role: models.RoleUser, Content: "draft"})
	c.PersistBestEffort()
	require.Len(t, drafts.sends, 1)
	assert.Equal(t, models.UserID(7), drafts.users[0])
	assert.Equal(t, "draft", drafts.sends[0][0].Content)

	anon := New(&api.MockClient{}, &staticIdentity{}, WithDraftSender(drafts))
	seed(anon, models.Message{Role: models.RoleUser, Content: "x"})
	anon.PersistBestEffort()
	assert.Len(t, drafts.sends, 1)
}

func TestLoadActiveSession(t *testing.T) {
	restored := []models.Message{
		{Role: models.RoleUser, Content: "q"},
		{Role: models.RoleAssistant, Content: "a"},
	}

	t.Run("adopts without duplicating", func(t *testing.T) {
		backend := &api.MockClient{Active: &api.ActiveSession{SessionID: 11, Messages: restored}}
		c := New(backend, loggedIn())

		assert.True(t, c.LoadActiveSession(context.Background()))
		assert.True(t, c.LoadActiveSession(context.Background()))

		assert.Equal(t, restored, c.Messages())
		id, ok := c.SessionID()
		assert.True(t, ok)
		assert.Equal(t, int64(11), id)
	})

	t.Run("empty session is ignored", func(t *testing.T) {
		backend := &api.MockClient{Active: &api.ActiveSession{SessionID: 11}}
		c := New(backend, loggedIn())

		assert.False(t, c.LoadActiveSession(context.Background()))
		_, ok := c.SessionID()
		assert.False(t, ok)
	})

	t.Run("errors are logged only", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		backend := &api.MockClient{ActiveErr: errors.New("refused")}
		c := New(backend, loggedIn(), WithLogger(zap.New(core)))

		assert.False(t, c.LoadActiveSession(context.Background()))
		assert.Equal(t, 1, logs.FilterMessage("failed to load active session").Len())
	})

	t.Run("anonymous skips the backend", func(t *testing.T) {
		backend := &api.MockClient{}
		c := New(backend, &staticIdentity{})

		assert.False(t, c.LoadActiveSession(context.Background()))
		assert.Zero(t, backend.ActiveCalls)
	})
}

func TestActivate_ClearsBeforeLoading(t *testing.T) {
	backend := &api.MockClient{}
	c := New(backend, loggedIn())
	seed(c, models.Message{Role: models.RoleUser, Content: "previous user's secret"})
	c.mu.Lock()
	c.sessionID, c.hasSession = 99, true
	c.mu.Unlock()

	assert.False(t, c.Activate(context.Background()))
	assert.Zero(t, c.Len(), "previous identity's messages must not survive")
	_, ok := c.SessionID()
	assert.False(t, ok)

	backend.Active = &api.ActiveSession{SessionID: 3, Messages: []models.Message{{Role: models.RoleUser, Content: "mine"}}}
	assert.True(t, c.Activate(context.Background()))
	assert.Equal(t, "mine", c.Messages()[0].Content)
}

func TestClear(t *testing.T) {
	backend := &api.MockClient{SaveID: 8}
	c := New(backend, loggedIn())
	seed(c, models.Message{Role: models.RoleUser, Content: "x"})
	require.NoError(t, c.Persist(context.Background(), false))

	c.Clear()
	assert.Zero(t, c.Len())

	id, ok := c.SessionID()
	assert.True(t, ok, "clear keeps the backend session")
	assert.Equal(t, int64(8), id)
}
