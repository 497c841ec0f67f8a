package store

import (
	"context"
	"database/sql"
	"fmt"
)

const boardColumns = `id, title, description, owner_id, created_at`

func scanBoard(row interface{ Scan(...any) error }) (Board, error) {
	var item Board
	var description sql.NullString
	if err := row.Scan(&item.ID, &item.Title, &description, &item.OwnerID, &item.CreatedAt); err != nil {
		return Board{}, err
	}
	item.Description = stringPtr(description)
	return item, nil
}

func (s *SQLStore) InsertBoard(ctx context.Context, item Board) (Board, error) {
	item.CreatedAt = s.now()
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO boards (title, description, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, item.Title, nullString(item.Description), item.OwnerID, item.CreatedAt).Scan(&item.ID)
	if err != nil {
		return Board{}, fmt.Errorf("insert board: %w", err)
	}
	return item, nil
}

func (s *SQLStore) GetBoard(ctx context.Context, boardID int64) (Board, error) {
	item, err := scanBoard(s.q.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE id=$1`, boardID))
	if err != nil {
		return Board{}, notFound(err, "board", boardID, "get board")
	}
	return item, nil
}

func (s *SQLStore) ListBoardsByOwner(ctx context.Context, ownerID int64) ([]Board, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE owner_id=$1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	items := make([]Board, 0)
	for rows.Next() {
		item, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boards: %w", err)
	}
	return items, nil
}

func (s *SQLStore) UpdateBoard(ctx context.Context, item Board) (Board, error) {
	result, err := s.q.ExecContext(ctx, `UPDATE boards SET title=$1, description=$2 WHERE id=$3`,
		item.Title, nullString(item.Description), item.ID)
	if err != nil {
		return Board{}, fmt.Errorf("update board: %w", err)
	}
	if err := expectAffected(result, "board", item.ID); err != nil {
		return Board{}, err
	}
	return s.GetBoard(ctx, item.ID)
}

// DeleteBoard removes the board; its lists, cards, comments and assignments
// go with it through ON DELETE CASCADE.
func (s *SQLStore) DeleteBoard(ctx context.Context, boardID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM boards WHERE id=$1`, boardID)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return expectAffected(result, "board", boardID)
}

const listColumns = `id, board_id, title, position, created_at`

func scanList(row interface{ Scan(...any) error }) (List, error) {
	var item List
	err := row.Scan(&item.ID, &item.BoardID, &item.Title, &item.Order, &item.CreatedAt)
	return item, err
}

func (s *SQLStore) InsertList(ctx context.Context, item List) (List, error) {
	item.CreatedAt = s.now()
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO lists (board_id, title, position, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, item.BoardID, item.Title, item.Order, item.CreatedAt).Scan(&item.ID)
	if err != nil {
		return List{}, fmt.Errorf("insert list: %w", err)
	}
	return item, nil
}

func (s *SQLStore) GetList(ctx context.Context, listID int64) (List, error) {
	item, err := scanList(s.q.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE id=$1`, listID))
	if err != nil {
		return List{}, notFound(err, "list", listID, "get list")
	}
	return item, nil
}

func (s *SQLStore) ListListsByBoard(ctx context.Context, boardID int64) ([]List, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+listColumns+`
		FROM lists
		WHERE board_id=$1
		ORDER BY position, id
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	items := make([]List, 0)
	for rows.Next() {
		item, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	return items, nil
}

func (s *SQLStore) UpdateList(ctx context.Context, item List) (List, error) {
	result, err := s.q.ExecContext(ctx, `UPDATE lists SET title=$1, position=$2 WHERE id=$3`, item.Title, item.Order, item.ID)
	if err != nil {
		return List{}, fmt.Errorf("update list: %w", err)
	}
	if err := expectAffected(result, "list", item.ID); err != nil {
		return List{}, err
	}
	return s.GetList(ctx, item.ID)
}

func (s *SQLStore) DeleteList(ctx context.Context, listID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM lists WHERE id=$1`, listID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return expectAffected(result, "list", listID)
}

// MaxListOrder returns the highest list order on the board, or nil when the
// board has no lists.
func (s *SQLStore) MaxListOrder(ctx context.Context, boardID int64) (*int, error) {
	var maxOrder sql.NullInt64
	if err := s.q.QueryRowContext(ctx, `SELECT MAX(position) FROM lists WHERE board_id=$1`, boardID).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("max list order: %w", err)
	}
	if !maxOrder.Valid {
		return nil, nil
	}
	value := int(maxOrder.Int64)
	return &value, nil
}
