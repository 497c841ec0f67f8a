package store

import (
	"context"
	"testing"
	"time"
)

func TestFilterCards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner")
	helper := mustUser(t, s, "helper")
	outsider := mustUser(t, s, "outsider")

	board := mustBoard(t, s, owner.ID, "Roadmap")
	doing := mustList(t, s, board.ID, "Doing", 1)
	todo := mustList(t, s, board.ID, "Todo", 0)

	due := func(day int) *time.Time {
		value := time.Date(2026, 5, day, 12, 0, 0, 0, time.UTC)
		return &value
	}

	write := mustCard(t, s, todo.ID, owner.ID, "Write release notes", 1)
	review := mustCard(t, s, todo.ID, helper.ID, "Review PR", 0)
	deploy := mustCard(t, s, doing.ID, owner.ID, "Deploy 100% rollout", 0)

	write.DueDate = due(10)
	if _, err := s.UpdateCard(ctx, write); err != nil {
		t.Fatalf("set due date: %v", err)
	}
	deploy.DueDate = due(20)
	if _, err := s.UpdateCard(ctx, deploy); err != nil {
		t.Fatalf("set due date: %v", err)
	}
	if _, err := s.CreateAssignment(ctx, review.ID, helper.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	otherBoard := mustBoard(t, s, outsider.ID, "Private")
	otherList := mustList(t, s, otherBoard.ID, "Todo", 0)
	mustCard(t, s, otherList.ID, outsider.ID, "Secret release", 0)

	ids := func(items []FilteredCard) []int64 {
		out := make([]int64, 0, len(items))
		for _, item := range items {
			out = append(out, item.ID)
		}
		return out
	}
	int64Ptr := func(v int64) *int64 { return &v }

	tests := []struct {
		name  string
		query CardQuery
		want  []int64
	}{
		{
			name:  "owner sees every card in board order",
			query: CardQuery{RequesterID: owner.ID},
			want:  []int64{review.ID, write.ID, deploy.ID},
		},
		{
			name:  "assignee sees only assigned cards",
			query: CardQuery{RequesterID: helper.ID},
			want:  []int64{review.ID},
		},
		{
			name:  "assigned user filter",
			query: CardQuery{RequesterID: owner.ID, AssignedUserID: int64Ptr(helper.ID)},
			want:  []int64{review.ID},
		},
		{
			name:  "creator filter",
			query: CardQuery{RequesterID: owner.ID, CreatorID: int64Ptr(owner.ID)},
			want:  []int64{write.ID, deploy.ID},
		},
		{
			name:  "due window excludes cards without due date",
			query: CardQuery{RequesterID: owner.ID, DueDateStart: due(1), DueDateEnd: due(15)},
			want:  []int64{write.ID},
		},
		{
			name:  "due start only",
			query: CardQuery{RequesterID: owner.ID, DueDateStart: due(15)},
			want:  []int64{deploy.ID},
		},
		{
			name:  "inverted window is empty",
			query: CardQuery{RequesterID: owner.ID, DueDateStart: due(25), DueDateEnd: due(1)},
			want:  []int64{},
		},
		{
			name:  "list filter",
			query: CardQuery{RequesterID: owner.ID, ListID: int64Ptr(doing.ID)},
			want:  []int64{deploy.ID},
		},
		{
			name:  "board filter on unreachable board",
			query: CardQuery{RequesterID: owner.ID, BoardID: int64Ptr(otherBoard.ID)},
			want:  []int64{},
		},
		{
			name:  "title contains is case insensitive",
			query: CardQuery{RequesterID: owner.ID, TitleContains: "RELEASE"},
			want:  []int64{write.ID},
		},
		{
			name:  "title contains treats percent literally",
			query: CardQuery{RequesterID: owner.ID, TitleContains: "100%"},
			want:  []int64{deploy.ID},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, err := s.FilterCards(ctx, tc.query)
			if err != nil {
				t.Fatalf("filter cards: %v", err)
			}
			got := ids(items)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}

	items, err := s.FilterCards(ctx, CardQuery{RequesterID: owner.ID, ListID: int64Ptr(doing.ID)})
	if err != nil || len(items) != 1 {
		t.Fatalf("filter cards: %v, %v", items, err)
	}
	if items[0].BoardID != board.ID || items[0].ListOrder != 1 {
		t.Fatalf("expected container fields, got %+v", items[0])
	}
}

func TestFilterCardsFoldsNonASCIICase(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner")
	board := mustBoard(t, s, owner.ID, "Rentrée")
	list := mustList(t, s, board.ID, "À faire", 0)
	plan := mustCard(t, s, list.ID, owner.ID, "ÉCOLE plan", 0)
	mustCard(t, s, list.ID, owner.ID, "Ecole budget", 1)

	items, err := s.FilterCards(ctx, CardQuery{RequesterID: owner.ID, TitleContains: "école"})
	if err != nil {
		t.Fatalf("filter cards: %v", err)
	}
	if len(items) != 1 || items[0].ID != plan.ID {
		t.Fatalf("expected only %q, got %+v", plan.Title, items)
	}
}
