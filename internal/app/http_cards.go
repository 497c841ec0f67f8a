package app

import (
	"net/http"
)

type assigneeBody struct {
	UserID *int64 `json:"userId"`
}

type commentBody struct {
	Content string `json:"content"`
}

// handleCards serves /api/cards/filter and /api/cards/{id}/...
func (s *HTTPServer) handleCards(w http.ResponseWriter, r *http.Request, session Session, rest []string) {
	ctx := r.Context()
	if len(rest) == 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	if len(rest) == 1 && rest[0] == "filter" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		results, err := s.service.FilterCards(ctx, session.UserID, r.URL.Query())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapViews(results, toFilteredCardView))
		return
	}

	cardID, err := parseID("card", rest[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if len(rest) == 1 {
		switch r.Method {
		case http.MethodGet:
			card, err := s.service.GetCard(ctx, session.UserID, cardID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toCardView(card))
		case http.MethodPut:
			var patch CardPatch
			if err := decodeBody(r, &patch); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			card, err := s.service.UpdateCard(ctx, session.UserID, cardID, patch)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toCardView(card))
		case http.MethodDelete:
			if err := s.service.DeleteCard(ctx, session.UserID, cardID); err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(rest) != 2 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch rest[1] {
	case "move":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		var input MoveInput
		if err := decodeBody(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		card, err := s.service.MoveCard(ctx, session.UserID, cardID, input)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCardView(card))

	case "assign":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var body assigneeBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		assignment, err := s.service.AssignUser(ctx, session.UserID, cardID, body.UserID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAssignmentView(assignment))

	case "unassign":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		var body assigneeBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.UnassignUser(ctx, session.UserID, cardID, body.UserID); err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case "assignments":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		assignments, err := s.service.ListAssignments(ctx, session.UserID, cardID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapViews(assignments, toAssignmentView))

	case "comments":
		switch r.Method {
		case http.MethodGet:
			comments, err := s.service.ListComments(ctx, session.UserID, cardID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, mapViews(comments, toCommentView))
		case http.MethodPost:
			var body commentBody
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			comment, err := s.service.CreateComment(ctx, session.UserID, cardID, body.Content)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toCommentView(comment))
		default:
			methodNotAllowed(w)
		}

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleComments(w http.ResponseWriter, r *http.Request, session Session, rest []string) {
	ctx := r.Context()
	if len(rest) != 1 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	commentID, err := parseID("comment", rest[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var body commentBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		comment, err := s.service.UpdateComment(ctx, session.UserID, commentID, body.Content)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCommentView(comment))
	case http.MethodDelete:
		if err := s.service.DeleteComment(ctx, session.UserID, commentID); err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		methodNotAllowed(w)
	}
}
