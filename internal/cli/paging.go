package cli

import (
	"context"

	"github.com/lawbridge/lawbridge/internal/db"
	"github.com/lawbridge/lawbridge/internal/present/format"
	"github.com/lawbridge/lawbridge/internal/util"
	"github.com/lawbridge/lawbridge/pkg/api"
)

const defaultPageSize = 200

// streamSummaries writes listing pages to w as they arrive. With all unset it
// stops after the first page. match filters each page fuzzily.
func streamSummaries(ctx context.Context, repo db.ConversationRepo, q api.ListQuery, all bool, match string, w format.SummaryWriter) error {
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	for {
		items, page, err := repo.ListConversations(ctx, q)
		if err != nil {
			return err
		}
		if err := w.WriteSummaries(util.MatchSummaries(match, items)); err != nil {
			return err
		}
		if !all || page.Next == "" || page.Next == q.Cursor {
			break
		}
		q.Cursor = page.Next
	}
	return w.Close()
}

// fetchAllSummaries collects every page into memory, for the picker.
func fetchAllSummaries(ctx context.Context, repo db.ConversationRepo, q api.ListQuery, match string) ([]api.Summary, error) {
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	out := make([]api.Summary, 0, q.Limit)
	for {
		items, page, err := repo.ListConversations(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if page.Next == "" || page.Next == q.Cursor {
			break
		}
		q.Cursor = page.Next
	}
	return util.MatchSummaries(match, out), nil
}
