package authz

import "testing"

func TestCan(t *testing.T) {
	owner := Relations{Owner: true}
	assignee := Relations{Assignee: true}
	author := Relations{Author: true}
	stranger := Relations{}

	cases := []struct {
		name  string
		rel   Relations
		op    Operation
		allow bool
	}{
		{name: "owner updates board", rel: owner, op: BoardUpdate, allow: true},
		{name: "assignee cannot read board", rel: assignee, op: BoardRead, allow: false},
		{name: "assignee cannot delete board", rel: assignee, op: BoardDelete, allow: false},
		{name: "assignee cannot create list", rel: assignee, op: ListCreate, allow: false},
		{name: "assignee cannot create card", rel: assignee, op: CardCreate, allow: false},
		{name: "assignee cannot list cards of a list", rel: assignee, op: CardList, allow: false},
		{name: "owner creates card", rel: owner, op: CardCreate, allow: true},
		{name: "assignee reads card", rel: assignee, op: CardRead, allow: true},
		{name: "assignee updates card", rel: assignee, op: CardUpdate, allow: true},
		{name: "assignee deletes card", rel: assignee, op: CardDelete, allow: true},
		{name: "assignee assigns", rel: assignee, op: CardAssign, allow: true},
		{name: "assignee comments", rel: assignee, op: CommentCreate, allow: true},
		{name: "stranger reads card", rel: stranger, op: CardRead, allow: false},
		{name: "author edits comment", rel: author, op: CommentUpdate, allow: true},
		{name: "owner cannot edit foreign comment", rel: owner, op: CommentUpdate, allow: false},
		{name: "assignee cannot delete foreign comment", rel: assignee, op: CommentDelete, allow: false},
		{name: "owner moves card", rel: owner, op: CardMove, allow: true},
		{name: "assignee cannot move card", rel: assignee, op: CardMove, allow: false},
		{name: "unknown operation", rel: Relations{Owner: true, Assignee: true, Author: true}, op: "card.archive", allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.rel, tc.op); got != tc.allow {
				t.Fatalf("Can(%+v, %q) = %v, want %v", tc.rel, tc.op, got, tc.allow)
			}
		})
	}
}
