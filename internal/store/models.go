package store

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Board struct {
	ID          int64
	Title       string
	Description *string
	OwnerID     int64
	CreatedAt   time.Time
}

// List is a column of cards. Order is a placement hint among the lists of
// the same board; duplicates are resolved by ID at read time.
type List struct {
	ID        int64
	BoardID   int64
	Title     string
	Order     int
	CreatedAt time.Time
}

type Card struct {
	ID          int64
	ListID      int64
	CreatorID   int64
	Title       string
	Description *string
	DueDate     *time.Time
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Comment struct {
	ID        int64
	CardID    int64
	UserID    int64
	Content   string
	CreatedAt time.Time
	// Joined from users for API responses
	Username string
}

type Assignment struct {
	ID         int64
	CardID     int64
	UserID     int64
	AssignedAt time.Time
	// Joined from users for API responses
	Username string
	Email    string
}

// CardQuery is the predicate set of FilterCards. RequesterID is always
// applied as the reachability predicate; nil fields are ignored.
type CardQuery struct {
	RequesterID    int64
	AssignedUserID *int64
	CreatorID      *int64
	BoardID        *int64
	ListID         *int64
	DueDateStart   *time.Time
	DueDateEnd     *time.Time
	TitleContains  string
}

// FilteredCard is a FilterCards row with the container fields it was sorted by.
type FilteredCard struct {
	Card
	BoardID   int64
	ListOrder int
}
