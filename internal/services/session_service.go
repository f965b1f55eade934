package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/studycounsel/internal/models"
	mongorepo "github.com/yoockh/studycounsel/internal/repositories/mongo"
	"github.com/yoockh/studycounsel/internal/utils"
)

const (
	defaultSessionTitle   = "New Counseling Session"
	defaultSessionPurpose = "general"
)

type SessionService interface {
	Create(ctx context.Context, userID, title, purpose string) (*models.Session, error)
	Get(ctx context.Context, userID, sessionID string) (*models.Session, error)
	List(ctx context.Context, userID string) ([]models.Session, error)
	// Messages returns the full transcript, oldest first.
	Messages(ctx context.Context, userID, sessionID string) ([]models.Message, error)
}

type sessionService struct {
	sessions mongorepo.SessionRepository
	messages mongorepo.MessageRepository
	now      func() time.Time
}

func NewSessionService(sessions mongorepo.SessionRepository, messages mongorepo.MessageRepository, now func() time.Time) SessionService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &sessionService{sessions: sessions, messages: messages, now: now}
}

func (s *sessionService) Create(ctx context.Context, userID, title, purpose string) (*models.Session, error) {
	const op = "SessionService.Create"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	now := s.now()
	session := &models.Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Title:     utils.OrDefault(strings.TrimSpace(title), defaultSessionTitle),
		Purpose:   utils.OrDefault(strings.TrimSpace(purpose), defaultSessionPurpose),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	const op = "SessionService.Get"

	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}

	out, err := s.sessions.GetForUser(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return out, nil
}

func (s *sessionService) List(ctx context.Context, userID string) ([]models.Session, error) {
	const op = "SessionService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.sessions.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return out, nil
}

func (s *sessionService) Messages(ctx context.Context, userID, sessionID string) ([]models.Message, error) {
	const op = "SessionService.Messages"

	if _, err := s.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	out, err := s.messages.ListBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return out, nil
}
