package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lawbridge/lawbridge/pkg/api"
)

type memStore struct {
	mu      sync.RWMutex
	byID    map[string]api.Conversation
	updated map[string]time.Time
	now     func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		byID:    make(map[string]api.Conversation),
		updated: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *memStore) CreateConversation(ctx context.Context, c api.Conversation) (api.Conversation, error) {
	c, err := prepare(c, m.now())
	if err != nil {
		return api.Conversation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[c.ID]; ok {
		return api.Conversation{}, fmt.Errorf("conversation %s: %w", c.ID, ErrConflict)
	}
	m.byID[c.ID] = c
	m.updated[c.ID] = c.CreatedAt
	return c.Snapshot(), nil
}

func (m *memStore) AppendTurn(ctx context.Context, id string, t api.Turn) (api.Conversation, error) {
	now := m.now().UTC()
	t, err := prepareTurn(t, now)
	if err != nil {
		return api.Conversation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return api.Conversation{}, ErrNotFound
	}
	c = c.Snapshot()
	c.Append(t)
	m.byID[id] = c
	m.updated[id] = now
	return c.Snapshot(), nil
}

func (m *memStore) GetConversation(ctx context.Context, id string) (api.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byID[id]
	if !ok {
		return api.Conversation{}, ErrNotFound
	}
	return c.Snapshot(), nil
}

func (m *memStore) ImportConversation(ctx context.Context, c api.Conversation) (api.Conversation, error) {
	c, err := prepare(c, m.now())
	if err != nil {
		return api.Conversation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[c.ID] = c
	m.updated[c.ID] = m.now().UTC()
	return c.Snapshot(), nil
}

func (m *memStore) DeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	delete(m.updated, id)
	return nil
}

func (m *memStore) ListConversations(ctx context.Context, q api.ListQuery) ([]api.Summary, api.Page, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	cursor, hasCursor := parseCursorToken(q.Cursor)

	m.mu.RLock()
	var all []api.Summary
	for _, c := range m.byID {
		if q.Bot != "" && c.Bot != q.Bot {
			continue
		}
		if !q.Since.IsZero() && c.CreatedAt.Before(q.Since) {
			continue
		}
		s := api.Summary{ID: c.ID, Title: c.Title, Bot: c.Bot, CreatedAt: c.CreatedAt, UpdatedAt: m.updated[c.ID], Turns: len(c.Turns)}
		if hasCursor && !cursor.before(s) {
			continue
		}
		all = append(all, s)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if len(all) > limit+1 {
		all = all[:limit+1]
	}
	out, page := buildPage(all, limit, hasCursor)
	return out, page, nil
}
