package authz

type Operation string

const (
	BoardCreate Operation = "board.create"
	BoardRead   Operation = "board.read"
	BoardUpdate Operation = "board.update"
	BoardDelete Operation = "board.delete"
	ListCreate  Operation = "list.create"
	ListRead    Operation = "list.read"
	ListUpdate  Operation = "list.update"
	ListDelete  Operation = "list.delete"
	CardCreate  Operation = "card.create"
	CardList    Operation = "card.list"

	CardRead       Operation = "card.read"
	CardUpdate     Operation = "card.update"
	CardDelete     Operation = "card.delete"
	CardAssign     Operation = "card.assign"
	CardUnassign   Operation = "card.unassign"
	AssignmentRead Operation = "assignment.read"
	CommentCreate  Operation = "comment.create"
	CommentRead    Operation = "comment.read"

	CommentUpdate Operation = "comment.update"
	CommentDelete Operation = "comment.delete"

	CardMove Operation = "card.move"
)

// Relations is what the requester is to the target: owner of the board that
// contains it, assignee of the card, author of the comment.
type Relations struct {
	Owner    bool
	Assignee bool
	Author   bool
}

func Can(rel Relations, op Operation) bool {
	switch op {
	case BoardCreate, BoardRead, BoardUpdate, BoardDelete,
		ListCreate, ListRead, ListUpdate, ListDelete,
		CardCreate, CardList:
		return rel.Owner
	case CardRead, CardUpdate, CardDelete, CardAssign, CardUnassign,
		AssignmentRead, CommentCreate, CommentRead:
		return rel.Owner || rel.Assignee
	case CommentUpdate, CommentDelete:
		return rel.Author
	case CardMove:
		// Only the source board counts; the destination list just has to exist.
		return rel.Owner
	default:
		return false
	}
}

func denyReason(op Operation) string {
	switch op {
	case CardRead, CardUpdate, CardDelete, CardAssign, CardUnassign,
		AssignmentRead, CommentCreate, CommentRead:
		return "only the board owner or a card assignee can do this"
	case CommentUpdate, CommentDelete:
		return "only the comment author can change this comment"
	case CardMove:
		return "only the owner of the card's board can move it"
	default:
		return "only the board owner can do this"
	}
}
