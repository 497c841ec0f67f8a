package cardfilter

import (
	"context"

	"taskboard/api/internal/store"
)

type Store interface {
	FilterCards(ctx context.Context, q store.CardQuery) ([]store.FilteredCard, error)
	ListAssigneesForCards(ctx context.Context, cardIDs []int64) (map[int64][]store.Assignment, error)
}

// Result is one matching card with its board and current assignees.
type Result struct {
	Card      store.Card
	BoardID   int64
	Assignees []store.Assignment
}

type Engine struct {
	store Store
}

func NewEngine(s Store) *Engine {
	return &Engine{store: s}
}

// Filter returns the cards requesterID can reach that match criteria, in
// board layout order. Assignees are read after the match so they reflect the
// assignments at response time.
func (e *Engine) Filter(ctx context.Context, requesterID int64, criteria Criteria) ([]Result, error) {
	if criteria.DueDateStart != nil && criteria.DueDateEnd != nil && criteria.DueDateStart.After(*criteria.DueDateEnd) {
		return []Result{}, nil
	}

	rows, err := e.store.FilterCards(ctx, store.CardQuery{
		RequesterID:    requesterID,
		AssignedUserID: criteria.AssignedUserID,
		CreatorID:      criteria.CreatorID,
		BoardID:        criteria.BoardID,
		ListID:         criteria.ListID,
		DueDateStart:   criteria.DueDateStart,
		DueDateEnd:     criteria.DueDateEnd,
		TitleContains:  criteria.TitleContains,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(rows))
	if len(rows) == 0 {
		return results, nil
	}

	seen := make(map[int64]bool, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		ids = append(ids, row.ID)
		results = append(results, Result{Card: row.Card, BoardID: row.BoardID})
	}

	assignees, err := e.store.ListAssigneesForCards(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Assignees = assignees[results[i].Card.ID]
		if results[i].Assignees == nil {
			results[i].Assignees = []store.Assignment{}
		}
	}
	return results, nil
}
