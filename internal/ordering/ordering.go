// Package ordering places lists within a board and cards within a list.
// Order values are hints relative to siblings: they are never renumbered,
// and duplicates are resolved by id when reading.
package ordering

import (
	"cmp"
	"context"
	"slices"

	"taskboard/api/internal/store"
)

// Next returns explicit when set, otherwise one past maxOrder, or 0 for an
// empty container.
func Next(maxOrder, explicit *int) int {
	if explicit != nil {
		return *explicit
	}
	if maxOrder == nil {
		return 0
	}
	return *maxOrder + 1
}

type Store interface {
	MaxListOrder(ctx context.Context, boardID int64) (*int, error)
	MaxCardOrder(ctx context.Context, listID, excludeCardID int64) (*int, error)
	ListListsByBoard(ctx context.Context, boardID int64) ([]store.List, error)
	ListCardsByList(ctx context.Context, listID int64) ([]store.Card, error)
	InTx(ctx context.Context, fn func(*store.SQLStore) error) error
}

type Engine struct {
	store Store
}

func NewEngine(s Store) *Engine {
	return &Engine{store: s}
}

func (e *Engine) NextListOrder(ctx context.Context, boardID int64, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	maxOrder, err := e.store.MaxListOrder(ctx, boardID)
	if err != nil {
		return 0, err
	}
	return Next(maxOrder, nil), nil
}

func (e *Engine) NextCardOrder(ctx context.Context, listID int64, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	maxOrder, err := e.store.MaxCardOrder(ctx, listID, 0)
	if err != nil {
		return 0, err
	}
	return Next(maxOrder, nil), nil
}

// MoveCard puts the card into targetListID. Without an explicit order it
// lands after the highest sibling in the target list, the card itself not
// counted. The max read and the single list+order write share one
// transaction.
func (e *Engine) MoveCard(ctx context.Context, cardID, targetListID int64, explicit *int) (store.Card, error) {
	var moved store.Card
	err := e.store.InTx(ctx, func(tx *store.SQLStore) error {
		order := 0
		if explicit != nil {
			order = *explicit
		} else {
			maxOrder, err := tx.MaxCardOrder(ctx, targetListID, cardID)
			if err != nil {
				return err
			}
			order = Next(maxOrder, nil)
		}

		var err error
		moved, err = tx.SetCardPosition(ctx, cardID, targetListID, order)
		return err
	})
	if err != nil {
		return store.Card{}, err
	}
	return moved, nil
}

// Lists returns the board's lists in display order.
func (e *Engine) Lists(ctx context.Context, boardID int64) ([]store.List, error) {
	items, err := e.store.ListListsByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	SortLists(items)
	return items, nil
}

// Cards returns the list's cards in display order.
func (e *Engine) Cards(ctx context.Context, listID int64) ([]store.Card, error) {
	items, err := e.store.ListCardsByList(ctx, listID)
	if err != nil {
		return nil, err
	}
	SortCards(items)
	return items, nil
}

func SortLists(items []store.List) {
	slices.SortStableFunc(items, func(a, b store.List) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func SortCards(items []store.Card) {
	slices.SortStableFunc(items, func(a, b store.Card) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
