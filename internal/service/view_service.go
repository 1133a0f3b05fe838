package service

import (
	"context"
	"fmt"

	"family-store/internal/model"
	"family-store/internal/view"

	"github.com/rs/zerolog"
)

// viewService implements ViewService.
type viewService struct {
	sessions Sessions
	logger   zerolog.Logger
}

// NewViewService creates a new view service.
func NewViewService(sessions Sessions, logger zerolog.Logger) ViewService {
	return &viewService{
		sessions: sessions,
		logger:   logger.With().Str("service", "view").Logger(),
	}
}

// Get returns the view state.
func (s *viewService) Get(ctx context.Context, sessionID string) (*view.State, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	state := sess.View()
	return &state, nil
}

// Apply applies a navigation intent.
func (s *viewService) Apply(ctx context.Context, sessionID string, req *model.ViewIntentRequest) (*view.State, error) {
	if req == nil || !view.Intent(req.Intent).Valid() {
		return nil, model.ErrInvalidIntent
	}

	var category model.Category
	if req.Category != "" {
		c, err := model.ParseCategory(req.Category)
		if err != nil {
			return nil, model.ErrInvalidCategory
		}
		category = c
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	state, err := sess.ApplyIntent(view.Intent(req.Intent), category)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", sess.ID()).
		Str("intent", req.Intent).
		Str("screen", string(state.Screen)).
		Msg("view intent applied")

	return &state, nil
}

// sessionService implements SessionService.
type sessionService struct {
	sessions Sessions
	logger   zerolog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(sessions Sessions, logger zerolog.Logger) SessionService {
	return &sessionService{
		sessions: sessions,
		logger:   logger.With().Str("service", "session").Logger(),
	}
}

// Create starts a new, empty session.
func (s *sessionService) Create(ctx context.Context) (*model.SessionResponse, error) {
	id := s.sessions.NewID()
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().Str("session_id", id).Msg("session created")
	return &model.SessionResponse{ID: id}, nil
}
