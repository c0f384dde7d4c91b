package app

import (
	"context"
	"errors"

	"survey-match-service/internal/domain"
	"survey-match-service/internal/logging"
)

// SessionRepository associates an interactive-session token with its survey
// session (in-memory, Redis-backed liveness, etc).
type SessionRepository interface {
	Put(token string, session *SurveySession)
	Get(token string) (*SurveySession, bool)
	Delete(token string)
}

// SurveyService contains the survey and matching use cases.
type SurveyService struct {
	sessions  SessionRepository
	questions QuestionBank
	users     *UserStore
	log       logging.Logger
}

func NewSurveyService(sessions SessionRepository, questions QuestionBank, users *UserStore, log logging.Logger) *SurveyService {
	return &SurveyService{sessions: sessions, questions: questions, users: users, log: log}
}

// Begin (re)starts the survey for token. An empty question set yields an
// empty view and no session is kept. If the new session fails to start, a
// session already registered under token is left untouched.
func (s *SurveyService) Begin(ctx context.Context, token, username string, vertical bool) (domain.SurveyView, error) {
	session := NewSurveySession(s.questions, s.users)
	if err := session.Start(ctx, username); err != nil {
		if errors.Is(err, domain.ErrNoQuestions) {
			s.sessions.Delete(token)
			s.log.Info(ctx, "survey has no questions", "username", username)
			return session.View(vertical)
		}
		s.log.Error(ctx, "start survey", "username", username, "err", err)
		return domain.SurveyView{}, err
	}

	s.sessions.Put(token, session)
	return session.View(vertical)
}

// Next records option and advances. Reaching the end commits the answers and
// releases the session; a session left Terminal by a failed commit retries
// the commit instead of advancing.
func (s *SurveyService) Next(ctx context.Context, token string, option int, vertical bool) (domain.SurveyView, error) {
	session, ok := s.sessions.Get(token)
	if !ok {
		return domain.SurveyView{}, domain.ErrSessionNotFound
	}

	if session.State() != domain.StateTerminal {
		if err := session.Advance(option); err != nil {
			return domain.SurveyView{}, err
		}
	}
	if session.State() == domain.StateTerminal {
		if err := session.Commit(ctx); err != nil {
			s.log.Error(ctx, "commit survey", "username", session.Username(), "err", err)
			return domain.SurveyView{}, err
		}
		s.sessions.Delete(token)
		s.log.Info(ctx, "survey committed", "username", session.Username())
	}
	return session.View(vertical)
}

// Previous records option and steps back one question.
func (s *SurveyService) Previous(_ context.Context, token string, option int, vertical bool) (domain.SurveyView, error) {
	session, ok := s.sessions.Get(token)
	if !ok {
		return domain.SurveyView{}, domain.ErrSessionNotFound
	}
	if err := session.Retreat(option); err != nil {
		return domain.SurveyView{}, err
	}
	return session.View(vertical)
}

// Current re-renders the session without changing it.
func (s *SurveyService) Current(_ context.Context, token string, vertical bool) (domain.SurveyView, error) {
	session, ok := s.sessions.Get(token)
	if !ok {
		return domain.SurveyView{}, domain.ErrSessionNotFound
	}
	return session.View(vertical)
}

// Abandon drops an unfinished session without persisting it.
func (s *SurveyService) Abandon(_ context.Context, token string) {
	s.sessions.Delete(token)
}

// Matches ranks every other stored user against username.
func (s *SurveyService) Matches(ctx context.Context, username string) (domain.MatchList, error) {
	if username == "" {
		return domain.MatchList{}, domain.ErrInvalidUsername
	}
	dir, err := s.users.LoadAll(ctx)
	if err != nil {
		s.log.Error(ctx, "load users for matching", "err", err)
		return domain.MatchList{}, err
	}
	return domain.MatchList{Username: username, Entries: Rank(username, dir)}, nil
}
