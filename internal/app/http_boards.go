package app

import (
	"net/http"
)

// handleBoards serves /api/boards[/{id}[/lists]].
func (s *HTTPServer) handleBoards(w http.ResponseWriter, r *http.Request, session Session, rest []string) {
	ctx := r.Context()

	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			boards, err := s.service.ListBoards(ctx, session.UserID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, mapViews(boards, toBoardView))
		case http.MethodPost:
			var input BoardInput
			if err := decodeBody(r, &input); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			board, err := s.service.CreateBoard(ctx, session.UserID, input)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toBoardView(board))
		default:
			methodNotAllowed(w)
		}
		return
	}

	boardID, err := parseID("board", rest[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if len(rest) == 1 {
		switch r.Method {
		case http.MethodGet:
			board, err := s.service.GetBoard(ctx, session.UserID, boardID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toBoardView(board))
		case http.MethodPut:
			var patch BoardPatch
			if err := decodeBody(r, &patch); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			board, err := s.service.UpdateBoard(ctx, session.UserID, boardID, patch)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toBoardView(board))
		case http.MethodDelete:
			if err := s.service.DeleteBoard(ctx, session.UserID, boardID); err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(rest) == 2 && rest[1] == "lists" {
		switch r.Method {
		case http.MethodGet:
			lists, err := s.service.ListLists(ctx, session.UserID, boardID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, mapViews(lists, toListView))
		case http.MethodPost:
			var input ListInput
			if err := decodeBody(r, &input); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			list, err := s.service.CreateList(ctx, session.UserID, boardID, input)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toListView(list))
		default:
			methodNotAllowed(w)
		}
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleLists serves /api/lists/{id}[/cards].
func (s *HTTPServer) handleLists(w http.ResponseWriter, r *http.Request, session Session, rest []string) {
	ctx := r.Context()
	if len(rest) == 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	listID, err := parseID("list", rest[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if len(rest) == 1 {
		switch r.Method {
		case http.MethodGet:
			list, err := s.service.GetList(ctx, session.UserID, listID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toListView(list))
		case http.MethodPut:
			var patch ListPatch
			if err := decodeBody(r, &patch); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			list, err := s.service.UpdateList(ctx, session.UserID, listID, patch)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toListView(list))
		case http.MethodDelete:
			if err := s.service.DeleteList(ctx, session.UserID, listID); err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(rest) == 2 && rest[1] == "cards" {
		switch r.Method {
		case http.MethodGet:
			cards, err := s.service.ListCards(ctx, session.UserID, listID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, mapViews(cards, toCardView))
		case http.MethodPost:
			var input CardInput
			if err := decodeBody(r, &input); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			card, err := s.service.CreateCard(ctx, session.UserID, listID, input)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toCardView(card))
		default:
			methodNotAllowed(w)
		}
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}
