package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"taskboard/api/internal/apperr"
)

const cardColumns = `id, list_id, creator_id, title, description, due_date, position, created_at, updated_at`

func scanCard(row interface{ Scan(...any) error }, extra ...any) (Card, error) {
	var item Card
	var description sql.NullString
	var dueDate sql.NullTime
	dest := []any{&item.ID, &item.ListID, &item.CreatorID, &item.Title, &description, &dueDate, &item.Order, &item.CreatedAt, &item.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Card{}, err
	}
	item.Description = stringPtr(description)
	item.DueDate = timePtr(dueDate)
	return item, nil
}

func (s *SQLStore) InsertCard(ctx context.Context, item Card) (Card, error) {
	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO cards (list_id, creator_id, title, description, due_date, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, item.ListID, item.CreatorID, item.Title, nullString(item.Description), nullTime(item.DueDate), item.Order, item.CreatedAt, item.UpdatedAt).Scan(&item.ID)
	if err != nil {
		return Card{}, fmt.Errorf("insert card: %w", err)
	}
	return item, nil
}

func (s *SQLStore) GetCard(ctx context.Context, cardID int64) (Card, error) {
	item, err := scanCard(s.q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id=$1`, cardID))
	if err != nil {
		return Card{}, notFound(err, "card", cardID, "get card")
	}
	return item, nil
}

func (s *SQLStore) ListCardsByList(ctx context.Context, listID int64) ([]Card, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE list_id=$1
		ORDER BY position, id
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	items := make([]Card, 0)
	for rows.Next() {
		item, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return items, nil
}

// UpdateCard writes the mutable card fields and stamps updated_at. The list
// and creator are not touched here.
func (s *SQLStore) UpdateCard(ctx context.Context, item Card) (Card, error) {
	updated, err := scanCard(s.q.QueryRowContext(ctx, `
		UPDATE cards
		SET title=$1, description=$2, due_date=$3, position=$4, updated_at=$5
		WHERE id=$6
		RETURNING `+cardColumns,
		item.Title, nullString(item.Description), nullTime(item.DueDate), item.Order, s.now(), item.ID))
	if err != nil {
		return Card{}, notFound(err, "card", item.ID, "update card")
	}
	return updated, nil
}

// SetCardPosition moves a card by writing list_id and position in a single
// statement, so no reader sees the new list with the old order.
func (s *SQLStore) SetCardPosition(ctx context.Context, cardID, listID int64, order int) (Card, error) {
	updated, err := scanCard(s.q.QueryRowContext(ctx, `
		UPDATE cards
		SET list_id=$1, position=$2, updated_at=$3
		WHERE id=$4
		RETURNING `+cardColumns,
		listID, order, s.now(), cardID))
	if err != nil {
		return Card{}, notFound(err, "card", cardID, "move card")
	}
	return updated, nil
}

func (s *SQLStore) DeleteCard(ctx context.Context, cardID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM cards WHERE id=$1`, cardID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return expectAffected(result, "card", cardID)
}

// MaxCardOrder returns the highest card order in the list ignoring
// excludeCardID, or nil when no other card is there.
func (s *SQLStore) MaxCardOrder(ctx context.Context, listID, excludeCardID int64) (*int, error) {
	var maxOrder sql.NullInt64
	err := s.q.QueryRowContext(ctx, `SELECT MAX(position) FROM cards WHERE list_id=$1 AND id<>$2`, listID, excludeCardID).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("max card order: %w", err)
	}
	if !maxOrder.Valid {
		return nil, nil
	}
	value := int(maxOrder.Int64)
	return &value, nil
}

func (s *SQLStore) CreateAssignment(ctx context.Context, cardID, userID int64) (Assignment, error) {
	item := Assignment{CardID: cardID, UserID: userID, AssignedAt: s.now()}
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO card_assignments (card_id, user_id, assigned_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, item.CardID, item.UserID, item.AssignedAt).Scan(&item.ID)
	if _, ok := s.dialect.uniqueViolation(err); ok {
		return Assignment{}, apperr.Conflict("assignment", "userId", "user already assigned to this card")
	}
	if err != nil {
		return Assignment{}, fmt.Errorf("insert assignment: %w", err)
	}
	return item, nil
}

func (s *SQLStore) DeleteAssignment(ctx context.Context, cardID, userID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM card_assignments WHERE card_id=$1 AND user_id=$2`, cardID, userID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if err := expectAffected(result, "assignment", userID); err != nil {
		return err
	}
	return nil
}

func (s *SQLStore) HasAssignment(ctx context.Context, cardID, userID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM card_assignments WHERE card_id=$1 AND user_id=$2)`, cardID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return exists, nil
}

func (s *SQLStore) ListAssignments(ctx context.Context, cardID int64) ([]Assignment, error) {
	byCard, err := s.ListAssigneesForCards(ctx, []int64{cardID})
	if err != nil {
		return nil, err
	}
	items := byCard[cardID]
	if items == nil {
		items = make([]Assignment, 0)
	}
	return items, nil
}

// assigneeBatchSize bounds the IN list of one assignee query, keeping it
// under the bind-parameter limits of both dialects.
var assigneeBatchSize = 500

// ListAssigneesForCards resolves the current assignees of every card in
// cardIDs, in assignment order.
func (s *SQLStore) ListAssigneesForCards(ctx context.Context, cardIDs []int64) (map[int64][]Assignment, error) {
	result := make(map[int64][]Assignment, len(cardIDs))
	for start := 0; start < len(cardIDs); start += assigneeBatchSize {
		end := min(start+assigneeBatchSize, len(cardIDs))
		if err := s.loadAssignees(ctx, cardIDs[start:end], result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *SQLStore) loadAssignees(ctx context.Context, cardIDs []int64, into map[int64][]Assignment) error {
	placeholders := make([]string, len(cardIDs))
	args := make([]any, len(cardIDs))
	for i, id := range cardIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT a.id, a.card_id, a.user_id, a.assigned_at, u.username, u.email
		FROM card_assignments a
		JOIN users u ON u.id = a.user_id
		WHERE a.card_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY a.card_id, a.assigned_at, a.id
	`, args...)
	if err != nil {
		return fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Assignment
		if err := rows.Scan(&item.ID, &item.CardID, &item.UserID, &item.AssignedAt, &item.Username, &item.Email); err != nil {
			return fmt.Errorf("scan assignment: %w", err)
		}
		into[item.CardID] = append(into[item.CardID], item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate assignments: %w", err)
	}
	return nil
}

func (s *SQLStore) InsertComment(ctx context.Context, item Comment) (Comment, error) {
	item.CreatedAt = s.now()
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO comments (card_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, item.CardID, item.UserID, item.Content, item.CreatedAt).Scan(&item.ID)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return item, nil
}

const commentSelect = `
	SELECT c.id, c.card_id, c.user_id, c.content, c.created_at, COALESCE(u.username, '')
	FROM comments c
	LEFT JOIN users u ON u.id = c.user_id
`

func scanComment(row interface{ Scan(...any) error }) (Comment, error) {
	var item Comment
	err := row.Scan(&item.ID, &item.CardID, &item.UserID, &item.Content, &item.CreatedAt, &item.Username)
	return item, err
}

func (s *SQLStore) GetComment(ctx context.Context, commentID int64) (Comment, error) {
	item, err := scanComment(s.q.QueryRowContext(ctx, commentSelect+` WHERE c.id=$1`, commentID))
	if err != nil {
		return Comment{}, notFound(err, "comment", commentID, "get comment")
	}
	return item, nil
}

// ListComments returns the card's comments oldest first.
func (s *SQLStore) ListComments(ctx context.Context, cardID int64) ([]Comment, error) {
	rows, err := s.q.QueryContext(ctx, commentSelect+` WHERE c.card_id=$1 ORDER BY c.created_at, c.id`, cardID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := make([]Comment, 0)
	for rows.Next() {
		item, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return items, nil
}

func (s *SQLStore) UpdateComment(ctx context.Context, commentID int64, content string) (Comment, error) {
	result, err := s.q.ExecContext(ctx, `UPDATE comments SET content=$1 WHERE id=$2`, content, commentID)
	if err != nil {
		return Comment{}, fmt.Errorf("update comment: %w", err)
	}
	if err := expectAffected(result, "comment", commentID); err != nil {
		return Comment{}, err
	}
	return s.GetComment(ctx, commentID)
}

func (s *SQLStore) DeleteComment(ctx context.Context, commentID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM comments WHERE id=$1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectAffected(result, "comment", commentID)
}
