package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"survey-match-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Survey sessions hold live state (question snapshot, cursor) and stay in
//     a local map; they are never shared across instances.
//   - Redis carries a liveness marker per token holding the username, so
//     operators can see in-flight surveys and stale markers expire on their own.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.SurveySession
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.SurveySession),
	}
}

func (s *SessionStore) Put(token string, session *app.SurveySession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(token), session.Username(), s.ttl).Err()
}

func (s *SessionStore) Get(token string) (*app.SurveySession, bool) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(token), s.ttl).Err()
	}
	return session, ok
}

func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return
	}
	delete(s.sessions, token)
	_ = s.client.Del(context.Background(), s.key(token)).Err()
}

func (s *SessionStore) key(token string) string {
	return "survey:session:" + token
}
