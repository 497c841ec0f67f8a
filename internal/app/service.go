package app

import (
	"context"
	"net/url"
	"strings"
	"time"

	"taskboard/api/internal/apperr"
	"taskboard/api/internal/auth"
	"taskboard/api/internal/authpw"
	"taskboard/api/internal/authz"
	"taskboard/api/internal/cardfilter"
	"taskboard/api/internal/config"
	"taskboard/api/internal/ordering"
	"taskboard/api/internal/session"
	"taskboard/api/internal/store"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       int64
	Username     string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	Ping(context.Context) error
	GetUserByID(context.Context, int64) (store.User, error)
	SearchUsers(context.Context, string, int64) ([]store.User, error)
	InsertBoard(context.Context, store.Board) (store.Board, error)
	ListBoardsByOwner(context.Context, int64) ([]store.Board, error)
	UpdateBoard(context.Context, store.Board) (store.Board, error)
	DeleteBoard(context.Context, int64) error
	InsertList(context.Context, store.List) (store.List, error)
	UpdateList(context.Context, store.List) (store.List, error)
	DeleteList(context.Context, int64) error
	InsertCard(context.Context, store.Card) (store.Card, error)
	UpdateCard(context.Context, store.Card) (store.Card, error)
	DeleteCard(context.Context, int64) error
	CreateAssignment(context.Context, int64, int64) (store.Assignment, error)
	DeleteAssignment(context.Context, int64, int64) error
	ListAssignments(context.Context, int64) ([]store.Assignment, error)
	InsertComment(context.Context, store.Comment) (store.Comment, error)
	GetComment(context.Context, int64) (store.Comment, error)
	ListComments(context.Context, int64) ([]store.Comment, error)
	UpdateComment(context.Context, int64, string) (store.Comment, error)
	DeleteComment(context.Context, int64) error
}

var (
	_ dataStore     = (*store.SQLStore)(nil)
	_ session.Store = (*store.SQLStore)(nil)
)

type Service struct {
	cfg       config.Config
	store     dataStore
	sessions  session.Store
	passwords *authpw.Service
	authz     *authz.Engine
	ordering  *ordering.Engine
	filter    *cardfilter.Engine
}

// New wires the engines over dataStore. Sessions live in the database unless
// a separate session store is given.
func New(cfg config.Config, dataStore *store.SQLStore, sessions session.Store) *Service {
	if sessions == nil {
		sessions = dataStore
	}
	return &Service{
		cfg:       cfg,
		store:     dataStore,
		sessions:  sessions,
		passwords: authpw.NewService(dataStore),
		authz:     authz.NewEngine(dataStore),
		ordering:  ordering.NewEngine(dataStore),
		filter:    cardfilter.NewEngine(dataStore),
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Register(ctx context.Context, req authpw.RegisterRequest) (store.User, error) {
	return s.passwords.Register(ctx, req)
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.passwords.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

// Refresh trades a live refresh token for a new session. The old refresh
// token is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return Session{}, apperr.Validation("refreshToken", "refreshToken is required")
	}
	tokenHash := auth.HashToken(refreshToken)
	userID, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return Session{}, apperr.Unauthorized("refresh token not found or expired")
	}
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	token, claims, err := auth.IssueToken([]byte(s.cfg.JWTSecret), user.ID, user.Username, s.cfg.AccessTTL)
	if err != nil {
		return Session{}, err
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, time.Now().Add(s.cfg.RefreshTTL)); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		Username:     user.Username,
		JTI:          claims.JTI,
		ExpiresAt:    claims.ExpiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.sessions.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if apperr.Is(err, apperr.KindNotFound) {
		return Session{}, auth.ErrInvalidToken
	}
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		JTI:       claims.JTI,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		if err := s.sessions.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if err := s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken)); err != nil {
			return err
		}
	}
	return nil
}

// SearchUsers finds other users by username or email. Queries shorter than
// two characters match nobody.
func (s *Service) SearchUsers(ctx context.Context, requesterID int64, query string) ([]store.User, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return []store.User{}, nil
	}
	return s.store.SearchUsers(ctx, query, requesterID)
}

func (s *Service) FilterCards(ctx context.Context, requesterID int64, query url.Values) ([]cardfilter.Result, error) {
	criteria, err := cardfilter.ParseCriteria(query)
	if err != nil {
		return nil, err
	}
	return s.filter.Filter(ctx, requesterID, criteria)
}
