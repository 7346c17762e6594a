package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawbridge/lawbridge/pkg/api"
)

// backends runs fn against every ConversationRepo implementation with a
// controllable clock.
func backends(t *testing.T, fn func(t *testing.T, repo ConversationRepo, clock *time.Time)) {
	t.Run("sqlite", func(t *testing.T) {
		s, closer, err := openSQLite(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = closer.Close() })
		clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return clock }
		fn(t, s, &clock)
	})
	t.Run("mem", func(t *testing.T) {
		m := newMemStore()
		clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return clock }
		fn(t, m, &clock)
	})
}

func TestCreateAndGet(t *testing.T) {
	backends(t, func(t *testing.T, repo ConversationRepo, clock *time.Time) {
		ctx := context.Background()
		created, err := repo.CreateConversation(ctx, api.Conversation{
			Bot: "Contract Bot",
			Turns: []api.Turn{
				{Role: "you", Content: "Is this NDA enforceable?\nIt has no end date."},
				{Role: "bot", Content: "**Short answer:** probably", Confidence: api.Confidence(0.73)},
			},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Is this NDA enforceable?", created.Title)
		assert.True(t, created.CreatedAt.Equal(*clock))

		got, err := repo.GetConversation(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Contract Bot", got.Bot)
		require.Len(t, got.Turns, 2)
		assert.Equal(t, api.RoleUser, got.Turns[0].Role)
		assert.Nil(t, got.Turns[0].Confidence)
		assert.Equal(t, api.RoleAssistant, got.Turns[1].Role)
		require.NotNil(t, got.Turns[1].Confidence)
		assert.InDelta(t, 0.73, *got.Turns[1].Confidence, 1e-9)
		assert.Equal(t, created.Hash(), got.Hash())
	})
}

func TestCreateRejects(t *testing.T) {
	backends(t, func(t *testing.T, repo ConversationRepo, _ *time.Time) {
		ctx := context.Background()
		_, err := repo.CreateConversation(ctx, api.Conversation{ID: "dup"})
		require.NoError(t, err)
		_, err = repo.CreateConversation(ctx, api.Conversation{ID: "dup"})
		assert.ErrorIs(t, err, ErrConflict)

		_, err = repo.CreateConversation(ctx, api.Conversation{Turns: []api.Turn{{Role: "judge", Content: "x"}}})
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestConfidenceOutOfRange(t *testing.T) {
	backends(t, func(t *testing.T, repo ConversationRepo, _ *time.Time) {
		ctx := context.Background()
		_, err := repo.CreateConversation(ctx, api.Conversation{Turns: []api.Turn{
			{Role: api.RoleAssistant, Content: "x", Confidence: api.Confidence(-3)},
		}})
		assert.ErrorIs(t, err, ErrInvalid)

		_, err = repo.ImportConversation(ctx, api.Conversation{ID: "imp", Turns: []api.Turn{
			{Role: api.RoleAssistant, Content: "x", Confidence: api.Confidence(7)},
		}})
		assert.ErrorIs(t, err, ErrInvalid)

		c, err := repo.CreateConversation(ctx, api.Conversation{Title: "Edges"})
		require.NoError(t, err)
		_, err = repo.AppendTurn(ctx, c.ID, api.Turn{Role: api.RoleAssistant, Content: "x", Confidence: api.Confidence(1.01)})
		assert.ErrorIs(t, err, ErrInvalid)
		got, err := repo.AppendTurn(ctx, c.ID, api.Turn{Role: api.RoleAssistant, Content: "x", Confidence: api.Confidence(1)})
		require.NoError(t, err)
		assert.Len(t, got.Turns, 1)
	})
}

func TestAppendTurn(t *testing.T) {
	backends(t, func(t *testing.T, repo ConversationRepo, clock *time.Time) {
		ctx := context.Background()
		c, err := repo.CreateConversation(ctx, api.Conversation{Title: "Lease"})
		require.NoError(t, err)
		assert.Equal(t, "Lease", c.Title)

		for i, content := range []string{"first", "second", "third"} {
			*clock = clock.Add(time.Minute)
			got, err := repo.AppendTurn(ctx, c.ID, api.Turn{Role: api.RoleUser, Content: content})
			require.NoError(t, err)
			require.Len(t, got.Turns, i+1)
			assert.Equal(t, content, got.Turns[i].Content)
			assert.True(t, got.Turns[i].CreatedAt.Equal(*clock))
		}

		_, err = repo.AppendTurn(ctx, "missing", api.Turn{Role: api.RoleUser, Content: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetConversation(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestImportReplaces(t *testing.T) {
	backends(t, func(t *testing.T, repo ConversationRepo, _ *time.Time) {
		ctx := context.Background()
		_, err := repo.ImportConversation(ctx, api.Conversation{ID: "imp", Title: "v1", Turns: []api.Turn{{Role: api.RoleUser, Content: "a"}}})
		require.NoError(t, err)
		_, err = repo.ImportConversation(ctx, api.Conversation{ID: "imp", Title: "v2", Turns: []api.Turn{
			{Role: api.RoleUser, Content: "b"},
			{Role: api.RoleAssistant, Content: "c"},
		}})
		require.NoError(t, err)

		got, err := repo.GetConversation(ctx, "imp")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Title)
		require.Len(t, got.Turns, 2)
		assert.Equal(t, "b", got.Turns[0].Content)
	})
}

func TestDelete(t *testing.T) {
	backends(t, func(t *testing.T, repo ConversationRepo, _ *time.Time) {
		ctx := context.Background()
		c, err := repo.CreateConversation(ctx, api.Conversation{Turns: []api.Turn{{Role: api.RoleUser, Content: "q"}}})
		require.NoError(t, err)
		require.NoError(t, repo.DeleteConversation(ctx, c.ID))
		_, err = repo.GetConversation(ctx, c.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.DeleteConversation(ctx, c.ID), ErrNotFound)
	})
}

func TestListPaging(t *testing.T) {
	backends(t, func(t *testing.T, repo ConversationRepo, clock *time.Time) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			*clock = clock.Add(time.Hour)
			bot := "Tenancy Bot"
			if i%2 == 1 {
				bot = "Contract Bot"
			}
			_, err := repo.CreateConversation(ctx, api.Conversation{Title: string(rune('A' + i)), Bot: bot})
			require.NoError(t, err)
		}

		first, page, err := repo.ListConversations(ctx, api.ListQuery{Limit: 2})
		require.NoError(t, err)
		require.Len(t, first, 2)
		assert.Equal(t, "E", first[0].Title, "newest first")
		assert.Equal(t, "D", first[1].Title)
		require.NotEmpty(t, page.Next)
		assert.Empty(t, page.Prev)

		second, page, err := repo.ListConversations(ctx, api.ListQuery{Limit: 2, Cursor: page.Next})
		require.NoError(t, err)
		require.Len(t, second, 2)
		assert.Equal(t, "C", second[0].Title)
		assert.NotEmpty(t, page.Prev)

		third, page, err := repo.ListConversations(ctx, api.ListQuery{Limit: 2, Cursor: page.Next})
		require.NoError(t, err)
		require.Len(t, third, 1)
		assert.Equal(t, "A", third[0].Title)
		assert.Empty(t, page.Next)

		bots, _, err := repo.ListConversations(ctx, api.ListQuery{Bot: "Contract Bot"})
		require.NoError(t, err)
		assert.Len(t, bots, 2)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://")
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	s, err = Open(ctx, filepath.Join(t.TempDir(), "nested", "lawbridge.db"))
	require.NoError(t, err)
	_, err = s.Conversations.CreateConversation(ctx, api.Conversation{Title: "x"})
	assert.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestWithTx(t *testing.T) {
	s, closer, err := openSQLite(context.Background(), filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	txCtx := WithTx(ctx, tx)
	assert.Same(t, tx, TxFromContext(txCtx))

	c, err := s.CreateConversation(txCtx, api.Conversation{Title: "rolled back"})
	require.NoError(t, err)
	_, err = s.GetConversation(txCtx, c.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	_, err = s.GetConversation(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
