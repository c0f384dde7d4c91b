package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"survey-match-service/internal/app"
	"survey-match-service/internal/domain"
	"survey-match-service/internal/logging"
)

// WSHandler drives one survey session per websocket connection.
type WSHandler struct {
	service  *app.SurveyService
	log      logging.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SurveyService, log logging.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Username string `json:"username"`
	Layout   string `json:"layout"`
}

// answerPayload carries the selected option index; a missing answer means
// the user moved on without choosing.
type answerPayload struct {
	Answer *int `json:"answer"`
}

type matchPayload struct {
	Username string `json:"username"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// connState is the per-connection view of the interactive session.
type connState struct {
	token    string
	username string
	vertical bool
}

// ServeWS upgrades HTTP requests to websockets and wires them into the survey use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	state := &connState{
		token:    uuid.NewString(),
		vertical: r.URL.Query().Get("layout") == "vertical",
	}
	defer h.service.Abandon(context.WithoutCancel(ctx), state.token)

	log := h.log.With("session", state.token)
	if err := conn.WriteJSON(outboundMessage[sessionPayload]{Type: "session", Payload: sessionPayload{SessionID: state.token}}); err != nil {
		log.Warn(ctx, "ws write error", "err", err)
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply := h.dispatch(ctx, state, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn(ctx, "ws write error", "err", err)
			return
		}
	}
}

func (h *WSHandler) dispatch(ctx context.Context, state *connState, inbound inboundMessage) outboundMessage[any] {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid start payload")
		}
		if payload.Layout != "" {
			state.vertical = payload.Layout == "vertical"
		}
		state.username = payload.Username
		return surveyMessage(h.service.Begin(ctx, state.token, payload.Username, state.vertical))
	case "next", "previous":
		var payload answerPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid answer payload")
		}
		option := domain.NoSelection
		if payload.Answer != nil {
			option = *payload.Answer
		}
		if inbound.Type == "next" {
			return surveyMessage(h.service.Next(ctx, state.token, option, state.vertical))
		}
		return surveyMessage(h.service.Previous(ctx, state.token, option, state.vertical))
	case "current":
		return surveyMessage(h.service.Current(ctx, state.token, state.vertical))
	case "match":
		var payload matchPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid match payload")
		}
		username := payload.Username
		if username == "" {
			username = state.username
		}
		matches, err := h.service.Matches(ctx, username)
		if err != nil {
			return errorMessage(publicError(err))
		}
		return outboundMessage[any]{Type: "matches", Payload: matches}
	default:
		return errorMessage("unsupported message type")
	}
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func surveyMessage(view domain.SurveyView, err error) outboundMessage[any] {
	if err != nil {
		return errorMessage(publicError(err))
	}
	return outboundMessage[any]{Type: "survey", Payload: view}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// publicError hides storage details from clients.
func publicError(err error) string {
	switch {
	case errors.Is(err, domain.ErrStorage), errors.Is(err, domain.ErrDataFormat):
		return "unable to process the request"
	default:
		return err.Error()
	}
}
