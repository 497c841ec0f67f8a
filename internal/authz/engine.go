package authz

import (
	"context"
	"fmt"

	"taskboard/api/internal/apperr"
	"taskboard/api/internal/store"
)

type Store interface {
	GetBoard(ctx context.Context, boardID int64) (store.Board, error)
	GetList(ctx context.Context, listID int64) (store.List, error)
	GetCard(ctx context.Context, cardID int64) (store.Card, error)
	GetComment(ctx context.Context, commentID int64) (store.Comment, error)
	HasAssignment(ctx context.Context, cardID, userID int64) (bool, error)
}

// Scope holds the records resolved while authorizing, so callers do not
// repeat the card, list and board lookups. Fields that the check did not
// need stay zero.
type Scope struct {
	Board      store.Board
	List       store.List
	Card       store.Card
	Comment    store.Comment
	TargetList store.List
}

// Engine decides whether a requester may run an operation against the
// current store state. Every method checks that the target exists before it
// checks permission.
type Engine struct {
	store Store
}

func NewEngine(s Store) *Engine {
	return &Engine{store: s}
}

func (e *Engine) AuthorizeBoard(ctx context.Context, requesterID int64, op Operation, boardID int64) (Scope, error) {
	board, err := e.store.GetBoard(ctx, boardID)
	if err != nil {
		return Scope{}, err
	}
	scope := Scope{Board: board}
	if err := decide(Relations{Owner: board.OwnerID == requesterID}, op, "board", boardID); err != nil {
		return Scope{}, err
	}
	return scope, nil
}

func (e *Engine) AuthorizeList(ctx context.Context, requesterID int64, op Operation, listID int64) (Scope, error) {
	list, err := e.store.GetList(ctx, listID)
	if err != nil {
		return Scope{}, err
	}
	board, err := e.parentBoard(ctx, "list", listID, list.BoardID)
	if err != nil {
		return Scope{}, err
	}
	if err := decide(Relations{Owner: board.OwnerID == requesterID}, op, "list", listID); err != nil {
		return Scope{}, err
	}
	return Scope{Board: board, List: list}, nil
}

func (e *Engine) AuthorizeCard(ctx context.Context, requesterID int64, op Operation, cardID int64) (Scope, error) {
	scope, err := e.resolveCard(ctx, cardID)
	if err != nil {
		return Scope{}, err
	}
	rel := Relations{Owner: scope.Board.OwnerID == requesterID}
	if !rel.Owner {
		rel.Assignee, err = e.store.HasAssignment(ctx, cardID, requesterID)
		if err != nil {
			return Scope{}, err
		}
	}
	if err := decide(rel, op, "card", cardID); err != nil {
		return Scope{}, err
	}
	return scope, nil
}

// AuthorizeComment decides comment mutations, where authorship is the only
// relation that counts.
func (e *Engine) AuthorizeComment(ctx context.Context, requesterID int64, op Operation, commentID int64) (Scope, error) {
	comment, err := e.store.GetComment(ctx, commentID)
	if err != nil {
		return Scope{}, err
	}
	if err := decide(Relations{Author: comment.UserID == requesterID}, op, "comment", commentID); err != nil {
		return Scope{}, err
	}
	return Scope{Comment: comment}, nil
}

// AuthorizeMove resolves the card with its current list and board plus the
// target list, then applies the move rule.
func (e *Engine) AuthorizeMove(ctx context.Context, requesterID, cardID, targetListID int64) (Scope, error) {
	scope, err := e.resolveCard(ctx, cardID)
	if err != nil {
		return Scope{}, err
	}
	scope.TargetList, err = e.store.GetList(ctx, targetListID)
	if err != nil {
		return Scope{}, err
	}
	if err := decide(Relations{Owner: scope.Board.OwnerID == requesterID}, CardMove, "card", cardID); err != nil {
		return Scope{}, err
	}
	return scope, nil
}

func (e *Engine) resolveCard(ctx context.Context, cardID int64) (Scope, error) {
	card, err := e.store.GetCard(ctx, cardID)
	if err != nil {
		return Scope{}, err
	}
	list, err := e.store.GetList(ctx, card.ListID)
	if err != nil {
		return Scope{}, missingParent(err, "list", card.ListID, "card", cardID)
	}
	board, err := e.parentBoard(ctx, "list", list.ID, list.BoardID)
	if err != nil {
		return Scope{}, err
	}
	return Scope{Board: board, List: list, Card: card}, nil
}

func (e *Engine) parentBoard(ctx context.Context, childEntity string, childID, boardID int64) (store.Board, error) {
	board, err := e.store.GetBoard(ctx, boardID)
	if err != nil {
		return store.Board{}, missingParent(err, "board", boardID, childEntity, childID)
	}
	return board, nil
}

func missingParent(err error, entity string, id int64, childEntity string, childID int64) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Inconsistent(entity, id, fmt.Sprintf("%s %d references missing %s %d", childEntity, childID, entity, id))
	}
	return err
}

func decide(rel Relations, op Operation, entity string, id int64) error {
	if Can(rel, op) {
		return nil
	}
	return apperr.Permission(entity, id, denyReason(op))
}
