package app

import (
	"context"
	"strings"
	"time"

	"taskboard/api/internal/apperr"
	"taskboard/api/internal/authz"
	"taskboard/api/internal/cardfilter"
	"taskboard/api/internal/store"
)

type BoardInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type BoardPatch struct {
	Title       *string          `json:"title"`
	Description Optional[string] `json:"description"`
}

type ListInput struct {
	Title string `json:"title"`
	Order *int   `json:"order"`
}

type ListPatch struct {
	Title *string `json:"title"`
	Order *int    `json:"order"`
}

type CardInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Order       *int    `json:"order"`
}

type CardPatch struct {
	Title       *string          `json:"title"`
	Description Optional[string] `json:"description"`
	DueDate     Optional[string] `json:"dueDate"`
	Order       *int             `json:"order"`
}

type MoveInput struct {
	ListID *int64 `json:"listId"`
	Order  *int   `json:"order"`
}

func requiredTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("title", "title is required")
	}
	return title, nil
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, ok := cardfilter.ParseTime(strings.TrimSpace(*raw))
	if !ok {
		return nil, apperr.Validation("dueDate", "dueDate must be an ISO 8601 date or date-time")
	}
	return &value, nil
}

func (s *Service) ListBoards(ctx context.Context, requesterID int64) ([]store.Board, error) {
	return s.store.ListBoardsByOwner(ctx, requesterID)
}

func (s *Service) CreateBoard(ctx context.Context, requesterID int64, input BoardInput) (store.Board, error) {
	title, err := requiredTitle(input.Title)
	if err != nil {
		return store.Board{}, err
	}
	return s.store.InsertBoard(ctx, store.Board{Title: title, Description: input.Description, OwnerID: requesterID})
}

func (s *Service) GetBoard(ctx context.Context, requesterID, boardID int64) (store.Board, error) {
	scope, err := s.authz.AuthorizeBoard(ctx, requesterID, authz.BoardRead, boardID)
	if err != nil {
		return store.Board{}, err
	}
	return scope.Board, nil
}

func (s *Service) UpdateBoard(ctx context.Context, requesterID, boardID int64, patch BoardPatch) (store.Board, error) {
	var title string
	if patch.Title != nil {
		var err error
		if title, err = requiredTitle(*patch.Title); err != nil {
			return store.Board{}, err
		}
	}

	scope, err := s.authz.AuthorizeBoard(ctx, requesterID, authz.BoardUpdate, boardID)
	if err != nil {
		return store.Board{}, err
	}
	board := scope.Board
	if patch.Title != nil {
		board.Title = title
	}
	if patch.Description.Set {
		board.Description = patch.Description.Value
	}
	return s.store.UpdateBoard(ctx, board)
}

func (s *Service) DeleteBoard(ctx context.Context, requesterID, boardID int64) error {
	if _, err := s.authz.AuthorizeBoard(ctx, requesterID, authz.BoardDelete, boardID); err != nil {
		return err
	}
	return s.store.DeleteBoard(ctx, boardID)
}

func (s *Service) ListLists(ctx context.Context, requesterID, boardID int64) ([]store.List, error) {
	if _, err := s.authz.AuthorizeBoard(ctx, requesterID, authz.ListRead, boardID); err != nil {
		return nil, err
	}
	return s.ordering.Lists(ctx, boardID)
}

func (s *Service) CreateList(ctx context.Context, requesterID, boardID int64, input ListInput) (store.List, error) {
	title, err := requiredTitle(input.Title)
	if err != nil {
		return store.List{}, err
	}
	if _, err := s.authz.AuthorizeBoard(ctx, requesterID, authz.ListCreate, boardID); err != nil {
		return store.List{}, err
	}
	order, err := s.ordering.NextListOrder(ctx, boardID, input.Order)
	if err != nil {
		return store.List{}, err
	}
	return s.store.InsertList(ctx, store.List{BoardID: boardID, Title: title, Order: order})
}

func (s *Service) GetList(ctx context.Context, requesterID, listID int64) (store.List, error) {
	scope, err := s.authz.AuthorizeList(ctx, requesterID, authz.ListRead, listID)
	if err != nil {
		return store.List{}, err
	}
	return scope.List, nil
}

func (s *Service) UpdateList(ctx context.Context, requesterID, listID int64, patch ListPatch) (store.List, error) {
	var title string
	if patch.Title != nil {
		var err error
		if title, err = requiredTitle(*patch.Title); err != nil {
			return store.List{}, err
		}
	}

	scope, err := s.authz.AuthorizeList(ctx, requesterID, authz.ListUpdate, listID)
	if err != nil {
		return store.List{}, err
	}
	list := scope.List
	if patch.Title != nil {
		list.Title = title
	}
	if patch.Order != nil {
		list.Order = *patch.Order
	}
	return s.store.UpdateList(ctx, list)
}

func (s *Service) DeleteList(ctx context.Context, requesterID, listID int64) error {
	if _, err := s.authz.AuthorizeList(ctx, requesterID, authz.ListDelete, listID); err != nil {
		return err
	}
	return s.store.DeleteList(ctx, listID)
}

func (s *Service) ListCards(ctx context.Context, requesterID, listID int64) ([]store.Card, error) {
	if _, err := s.authz.AuthorizeList(ctx, requesterID, authz.CardList, listID); err != nil {
		return nil, err
	}
	return s.ordering.Cards(ctx, listID)
}

func (s *Service) CreateCard(ctx context.Context, requesterID, listID int64, input CardInput) (store.Card, error) {
	title, err := requiredTitle(input.Title)
	if err != nil {
		return store.Card{}, err
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return store.Card{}, err
	}
	if _, err := s.authz.AuthorizeList(ctx, requesterID, authz.CardCreate, listID); err != nil {
		return store.Card{}, err
	}
	order, err := s.ordering.NextCardOrder(ctx, listID, input.Order)
	if err != nil {
		return store.Card{}, err
	}
	return s.store.InsertCard(ctx, store.Card{
		ListID:      listID,
		CreatorID:   requesterID,
		Title:       title,
		Description: input.Description,
		DueDate:     dueDate,
		Order:       order,
	})
}

func (s *Service) GetCard(ctx context.Context, requesterID, cardID int64) (store.Card, error) {
	scope, err := s.authz.AuthorizeCard(ctx, requesterID, authz.CardRead, cardID)
	if err != nil {
		return store.Card{}, err
	}
	return scope.Card, nil
}

func (s *Service) UpdateCard(ctx context.Context, requesterID, cardID int64, patch CardPatch) (store.Card, error) {
	var title string
	if patch.Title != nil {
		var err error
		if title, err = requiredTitle(*patch.Title); err != nil {
			return store.Card{}, err
		}
	}
	var dueDate *time.Time
	if patch.DueDate.Set {
		var err error
		if dueDate, err = parseDueDate(patch.DueDate.Value); err != nil {
			return store.Card{}, err
		}
	}

	scope, err := s.authz.AuthorizeCard(ctx, requesterID, authz.CardUpdate, cardID)
	if err != nil {
		return store.Card{}, err
	}
	card := scope.Card
	if patch.Title != nil {
		card.Title = title
	}
	if patch.Description.Set {
		card.Description = patch.Description.Value
	}
	if patch.DueDate.Set {
		card.DueDate = dueDate
	}
	if patch.Order != nil {
		card.Order = *patch.Order
	}
	return s.store.UpdateCard(ctx, card)
}

func (s *Service) DeleteCard(ctx context.Context, requesterID, cardID int64) error {
	if _, err := s.authz.AuthorizeCard(ctx, requesterID, authz.CardDelete, cardID); err != nil {
		return err
	}
	return s.store.DeleteCard(ctx, cardID)
}

func (s *Service) MoveCard(ctx context.Context, requesterID, cardID int64, input MoveInput) (store.Card, error) {
	if input.ListID == nil {
		return store.Card{}, apperr.Validation("listId", "listId is required")
	}
	if _, err := s.authz.AuthorizeMove(ctx, requesterID, cardID, *input.ListID); err != nil {
		return store.Card{}, err
	}
	return s.ordering.MoveCard(ctx, cardID, *input.ListID, input.Order)
}

func (s *Service) AssignUser(ctx context.Context, requesterID, cardID int64, userID *int64) (store.Assignment, error) {
	if userID == nil {
		return store.Assignment{}, apperr.Validation("userId", "userId is required")
	}
	if _, err := s.authz.AuthorizeCard(ctx, requesterID, authz.CardAssign, cardID); err != nil {
		return store.Assignment{}, err
	}
	user, err := s.store.GetUserByID(ctx, *userID)
	if err != nil {
		return store.Assignment{}, err
	}
	assignment, err := s.store.CreateAssignment(ctx, cardID, user.ID)
	if err != nil {
		return store.Assignment{}, err
	}
	assignment.Username = user.Username
	assignment.Email = user.Email
	return assignment, nil
}

func (s *Service) UnassignUser(ctx context.Context, requesterID, cardID int64, userID *int64) error {
	if userID == nil {
		return apperr.Validation("userId", "userId is required")
	}
	if _, err := s.authz.AuthorizeCard(ctx, requesterID, authz.CardUnassign, cardID); err != nil {
		return err
	}
	return s.store.DeleteAssignment(ctx, cardID, *userID)
}

func (s *Service) ListAssignments(ctx context.Context, requesterID, cardID int64) ([]store.Assignment, error) {
	if _, err := s.authz.AuthorizeCard(ctx, requesterID, authz.AssignmentRead, cardID); err != nil {
		return nil, err
	}
	return s.store.ListAssignments(ctx, cardID)
}

func requiredContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Validation("content", "content is required")
	}
	return content, nil
}

func (s *Service) CreateComment(ctx context.Context, requesterID, cardID int64, content string) (store.Comment, error) {
	content, err := requiredContent(content)
	if err != nil {
		return store.Comment{}, err
	}
	if _, err := s.authz.AuthorizeCard(ctx, requesterID, authz.CommentCreate, cardID); err != nil {
		return store.Comment{}, err
	}
	comment, err := s.store.InsertComment(ctx, store.Comment{CardID: cardID, UserID: requesterID, Content: content})
	if err != nil {
		return store.Comment{}, err
	}
	return s.store.GetComment(ctx, comment.ID)
}

func (s *Service) ListComments(ctx context.Context, requesterID, cardID int64) ([]store.Comment, error) {
	if _, err := s.authz.AuthorizeCard(ctx, requesterID, authz.CommentRead, cardID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, cardID)
}

func (s *Service) UpdateComment(ctx context.Context, requesterID, commentID int64, content string) (store.Comment, error) {
	content, err := requiredContent(content)
	if err != nil {
		return store.Comment{}, err
	}
	if _, err := s.authz.AuthorizeComment(ctx, requesterID, authz.CommentUpdate, commentID); err != nil {
		return store.Comment{}, err
	}
	return s.store.UpdateComment(ctx, commentID, content)
}

func (s *Service) DeleteComment(ctx context.Context, requesterID, commentID int64) error {
	if _, err := s.authz.AuthorizeComment(ctx, requesterID, authz.CommentDelete, commentID); err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, commentID)
}
