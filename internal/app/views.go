package app

import (
	"time"

	"taskboard/api/internal/cardfilter"
	"taskboard/api/internal/store"
)

type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type boardView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	OwnerID     int64     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type listView struct {
	ID        int64     `json:"id"`
	BoardID   int64     `json:"boardId"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

type cardView struct {
	ID          int64      `json:"id"`
	ListID      int64      `json:"listId"`
	CreatorID   int64      `json:"creatorId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type filteredCardView struct {
	cardView
	BoardID   int64      `json:"boardId"`
	Assignees []userView `json:"assignees"`
}

type assignmentView struct {
	ID         int64     `json:"id"`
	CardID     int64     `json:"cardId"`
	UserID     int64     `json:"userId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	AssignedAt time.Time `json:"assignedAt"`
}

type commentView struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"cardId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(u store.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toBoardView(b store.Board) boardView {
	return boardView{ID: b.ID, Title: b.Title, Description: b.Description, OwnerID: b.OwnerID, CreatedAt: b.CreatedAt}
}

func toListView(l store.List) listView {
	return listView{ID: l.ID, BoardID: l.BoardID, Title: l.Title, Order: l.Order, CreatedAt: l.CreatedAt}
}

func toCardView(c store.Card) cardView {
	return cardView{
		ID:          c.ID,
		ListID:      c.ListID,
		CreatorID:   c.CreatorID,
		Title:       c.Title,
		Description: c.Description,
		DueDate:     c.DueDate,
		Order:       c.Order,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toFilteredCardView(r cardfilter.Result) filteredCardView {
	assignees := make([]userView, 0, len(r.Assignees))
	for _, a := range r.Assignees {
		assignees = append(assignees, userView{ID: a.UserID, Username: a.Username, Email: a.Email})
	}
	return filteredCardView{cardView: toCardView(r.Card), BoardID: r.BoardID, Assignees: assignees}
}

func toAssignmentView(a store.Assignment) assignmentView {
	return assignmentView{ID: a.ID, CardID: a.CardID, UserID: a.UserID, Username: a.Username, Email: a.Email, AssignedAt: a.AssignedAt}
}

func toCommentView(c store.Comment) commentView {
	return commentView{ID: c.ID, CardID: c.CardID, UserID: c.UserID, Username: c.Username, Content: c.Content, CreatedAt: c.CreatedAt}
}

// mapViews converts a slice with fn, never returning nil so empty
// collections encode as [].
func mapViews[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
