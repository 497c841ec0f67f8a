package store

import (
	"context"
	"fmt"
	"strings"
)

// FilterCards returns the cards reachable by q.RequesterID that satisfy every
// set predicate of q. A card is reachable when the requester owns its board
// or is assigned to it. Rows come back in board layout order: list order,
// list id, card order, card id.
func (s *SQLStore) FilterCards(ctx context.Context, q CardQuery) ([]FilteredCard, error) {
	args := []any{q.RequesterID}
	where := []string{
		`(b.owner_id = $1 OR EXISTS (SELECT 1 FROM card_assignments ra WHERE ra.card_id = c.id AND ra.user_id = $1))`,
	}
	argN := 2

	if q.AssignedUserID != nil {
		where = append(where, fmt.Sprintf(`EXISTS (SELECT 1 FROM card_assignments fa WHERE fa.card_id = c.id AND fa.user_id = $%d)`, argN))
		args = append(args, *q.AssignedUserID)
		argN++
	}
	if q.CreatorID != nil {
		where = append(where, fmt.Sprintf(`c.creator_id = $%d`, argN))
		args = append(args, *q.CreatorID)
		argN++
	}
	if q.DueDateStart != nil {
		where = append(where, fmt.Sprintf(`(c.due_date IS NOT NULL AND c.due_date >= $%d)`, argN))
		args = append(args, q.DueDateStart.UTC())
		argN++
	}
	if q.DueDateEnd != nil {
		where = append(where, fmt.Sprintf(`(c.due_date IS NOT NULL AND c.due_date <= $%d)`, argN))
		args = append(args, q.DueDateEnd.UTC())
		argN++
	}
	if q.BoardID != nil {
		where = append(where, fmt.Sprintf(`l.board_id = $%d`, argN))
		args = append(args, *q.BoardID)
		argN++
	}
	if q.ListID != nil {
		where = append(where, fmt.Sprintf(`c.list_id = $%d`, argN))
		args = append(args, *q.ListID)
		argN++
	}
	if strings.TrimSpace(q.TitleContains) != "" {
		where = append(where, fmt.Sprintf(`LOWER(c.title) LIKE $%d ESCAPE '\'`, argN))
		args = append(args, likePattern(strings.TrimSpace(q.TitleContains)))
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT c.id, c.list_id, c.creator_id, c.title, c.description, c.due_date, c.position, c.created_at, c.updated_at,
			l.board_id, l.position
		FROM cards c
		JOIN lists l ON l.id = c.list_id
		JOIN boards b ON b.id = l.board_id
		WHERE `+strings.Join(where, "\n\t\t\tAND ")+`
		ORDER BY l.position, l.id, c.position, c.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("filter cards: %w", err)
	}
	defer rows.Close()

	items := make([]FilteredCard, 0)
	for rows.Next() {
		var item FilteredCard
		card, err := scanCard(rows, &item.BoardID, &item.ListOrder)
		if err != nil {
			return nil, fmt.Errorf("scan filtered card: %w", err)
		}
		item.Card = card
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filtered cards: %w", err)
	}
	return items, nil
}
