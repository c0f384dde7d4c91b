package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"survey-match-service/internal/app"
	"survey-match-service/internal/domain"
	"survey-match-service/internal/infra/memory"
	"survey-match-service/internal/logging"
)

func TestWebSocketSurveyFlow(t *testing.T) {
	service, users, sessions := newTestService(sampleQuestions())
	require.NoError(t, users.Upsert(context.Background(), "bob", domain.ChoiceRecord{"q1": 1, "q2": 0}))

	server := httptest.NewServer(NewRouter(service, logging.Nop()))
	defer server.Close()

	conn := dial(t, server, "?layout=vertical")
	defer conn.Close()

	msg := readNext(t, conn, "session")
	require.NotEmpty(t, msg.Payload["sessionId"])

	send(t, conn, "start", map[string]any{"username": "alice"})
	msg = readNext(t, conn, "survey")
	require.Equal(t, "in_progress", msg.Payload["status"])
	require.EqualValues(t, 1, msg.Payload["page"])
	require.Equal(t, true, msg.Payload["isVertical"])
	require.Equal(t, 1, sessions.Len())

	send(t, conn, "next", map[string]any{"answer": 1})
	msg = readNext(t, conn, "survey")
	require.EqualValues(t, 2, msg.Payload["page"])

	send(t, conn, "previous", map[string]any{})
	msg = readNext(t, conn, "survey")
	require.EqualValues(t, 1, msg.Payload["page"])
	require.EqualValues(t, 1, msg.Payload["selected"])

	send(t, conn, "next", map[string]any{"answer": 1})
	readNext(t, conn, "survey")
	send(t, conn, "next", map[string]any{"answer": 5})
	msg = readNext(t, conn, "error")
	require.Contains(t, msg.Payload["message"], "invalid answer")

	send(t, conn, "next", map[string]any{"answer": 0})
	msg = readNext(t, conn, "survey")
	require.EqualValues(t, 3, msg.Payload["page"])

	send(t, conn, "next", map[string]any{"answer": 1})
	msg = readNext(t, conn, "survey")
	require.Equal(t, "completed", msg.Payload["status"])
	require.Zero(t, sessions.Len())

	send(t, conn, "match", nil)
	msg = readNext(t, conn, "matches")
	entries := msg.Payload["entries"].([]any)
	require.Len(t, entries, 1)
	require.Equal(t, "bob", entries[0].(map[string]any)["username"])
	require.EqualValues(t, 2, entries[0].(map[string]any)["score"])
}

func TestWebSocketEmptySurveyAndUnknownType(t *testing.T) {
	service, _, sessions := newTestService(nil)
	server := httptest.NewServer(NewRouter(service, logging.Nop()))
	defer server.Close()

	conn := dial(t, server, "")
	defer conn.Close()
	readNext(t, conn, "session")

	send(t, conn, "start", map[string]any{"username": "alice"})
	msg := readNext(t, conn, "survey")
	require.Equal(t, "empty", msg.Payload["status"])
	require.Zero(t, sessions.Len())

	send(t, conn, "next", map[string]any{"answer": 0})
	readNext(t, conn, "error")

	send(t, conn, "dance", nil)
	msg = readNext(t, conn, "error")
	require.Equal(t, "unsupported message type", msg.Payload["message"])
}

func TestDisconnectAbandonsSession(t *testing.T) {
	service, _, sessions := newTestService(sampleQuestions())
	server := httptest.NewServer(NewRouter(service, logging.Nop()))
	defer server.Close()

	conn := dial(t, server, "")
	readNext(t, conn, "session")
	send(t, conn, "start", map[string]any{"username": "alice"})
	readNext(t, conn, "survey")
	require.Equal(t, 1, sessions.Len())

	conn.Close()
	require.Eventually(t, func() bool { return sessions.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMatchesEndpoint(t *testing.T) {
	service, users, _ := newTestService(sampleQuestions())
	ctx := context.Background()
	require.NoError(t, users.Upsert(ctx, "ann", domain.ChoiceRecord{"q1": 0}))
	require.NoError(t, users.Upsert(ctx, "ben", domain.ChoiceRecord{"q1": 1}))
	require.NoError(t, users.Upsert(ctx, "cy", domain.ChoiceRecord{"q1": 0}))

	server := httptest.NewServer(NewRouter(service, logging.Nop()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/matches/ann")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Cache-Control"), "no-cache")

	var list domain.MatchList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Equal(t, []domain.Match{{Username: "cy", Score: 1}, {Username: "ben", Score: 0}}, list.Entries)

	health, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)
}

type message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": typ, "payload": payload}))
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) message {
	t.Helper()
	var msg message
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, expect, msg.Type, "payload: %v", msg.Payload)
	return msg
}

func newTestService(questions []domain.Question) (*app.SurveyService, *app.UserStore, *memory.SessionStore) {
	sessions := memory.NewSessionStore()
	users := app.NewUserStore(memory.NewUserRepository())
	service := app.NewSurveyService(sessions, memory.NewStaticQuestionBank(questions), users, logging.Nop())
	return service, users, sessions
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Text: "Cats or dogs?", Choices: []string{"Cats", "Dogs"}},
		{ID: "q2", Text: "Tea or coffee?", Choices: []string{"Tea", "Coffee"}},
		{ID: "q3", Text: "City or country?", Choices: []string{"City", "Country"}},
	}
}
