package db

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/lawbridge/lawbridge/pkg/api"
)

// ConversationRepo persists conversations and their turns. Turns are
// append-only: the only way to change a stored conversation is AppendTurn,
// or ImportConversation which replaces it wholesale.
type ConversationRepo interface {
	CreateConversation(ctx context.Context, c api.Conversation) (api.Conversation, error)
	AppendTurn(ctx context.Context, id string, t api.Turn) (api.Conversation, error)
	GetConversation(ctx context.Context, id string) (api.Conversation, error)
	ListConversations(ctx context.Context, q api.ListQuery) ([]api.Summary, api.Page, error)
	ImportConversation(ctx context.Context, c api.Conversation) (api.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)

// Store bundles the repositories behind one handle.
type Store struct {
	Conversations ConversationRepo

	closer io.Closer
}

func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open returns a Store for dsn: "mem://" for a process-local store,
// otherwise a sqlite file path with an optional "sqlite://" prefix.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" || strings.HasPrefix(dsn, "mem://") {
		return &Store{Conversations: newMemStore()}, nil
	}
	repo, closer, err := openSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Conversations: repo, closer: closer}, nil
}
