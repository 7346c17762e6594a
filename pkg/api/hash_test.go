package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConversation_Hash(t *testing.T) {
	base := Conversation{
		ID:        "c-1",
		Title:     "Tenancy question",
		Bot:       "Legal AI",
		CreatedAt: time.Now().UTC(),
		Turns: []Turn{
			{Role: RoleUser, Content: "Can my landlord keep the deposit?"},
			{Role: RoleAssistant, Content: "**Answer:**\nUsually not.", Confidence: Confidence(0.91)},
		},
	}

	t.Run("identical snapshots produce identical hashes", func(t *testing.T) {
		c1 := base.Snapshot()
		c2 := base.Snapshot()
		assert.Equal(t, c1.Hash(), c2.Hash())
	})

	t.Run("id and timestamps are ignored", func(t *testing.T) {
		c2 := base.Snapshot()
		c2.ID = "c-2"
		c2.CreatedAt = c2.CreatedAt.Add(time.Hour)
		assert.Equal(t, base.Hash(), c2.Hash())
	})

	t.Run("content change alters hash", func(t *testing.T) {
		c2 := base.Snapshot()
		c2.Turns[1].Content = "Usually yes."
		assert.NotEqual(t, base.Hash(), c2.Hash())
	})

	t.Run("confidence change alters hash", func(t *testing.T) {
		c2 := base.Snapshot()
		c2.Turns[1].Confidence = Confidence(0.5)
		assert.NotEqual(t, base.Hash(), c2.Hash())
	})

	t.Run("appending a turn alters hash", func(t *testing.T) {
		c2 := base.Snapshot()
		c2.Append(Turn{Role: RoleUser, Content: "Thanks"})
		assert.NotEqual(t, base.Hash(), c2.Hash())
		assert.Len(t, base.Turns, 2, "snapshot must not alias the original")
	})
}

func TestDigestStable(t *testing.T) {
	assert.Equal(t, Digest([]byte("pdf")), Digest([]byte("pdf")))
	assert.Len(t, Digest(nil), 64)
}
