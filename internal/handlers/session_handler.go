package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mockmate/internal/auth"
	"mockmate/internal/middleware"
	"mockmate/internal/models"
	"mockmate/internal/session"
	"mockmate/internal/utils"
)

// capture session actions, shared by the REST routes and the stream
const (
	ActionStart       = "start"
	ActionSegments    = "segments"
	ActionCancel      = "cancel"
	ActionStop        = "stop"
	ActionReset       = "reset"
	ActionSaveRequest = "save-request"
	ActionSaveDismiss = "save-dismiss"
	ActionConfirm     = "confirm"
)

const maxStreamMessageBytes = 1 << 20

// QuestionSource resolves an owned interview question.
type QuestionSource interface {
	Question(ctx context.Context, userID, interviewID string, index int) (models.QuestionAnswerPair, error)
}

type SessionHandler struct {
	questions QuestionSource
	registry  *session.Registry
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewSessionHandler accepts websocket upgrades from allowedOrigins, or from
// requests without an Origin header.
func NewSessionHandler(questions QuestionSource, registry *session.Registry, allowedOrigins []string, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &SessionHandler{
		questions: questions,
		registry:  registry,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

func sessionKey(r *http.Request) (session.Key, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return session.Key{}, false
	}
	return session.Key{
		UserID:      auth.UserIDFromContext(r.Context()),
		InterviewID: chi.URLParam(r, "id"),
		Index:       index,
	}, true
}

func writeInvalidIndex(w http.ResponseWriter) {
	utils.Error(w, http.StatusBadRequest, "invalid_index", "question index must be a non-negative integer")
}

// open resolves the question for the caller and returns its session, creating it if needed.
func (h *SessionHandler) open(r *http.Request, key session.Key) (*session.Session, error) {
	if key.UserID == "" {
		return nil, models.ErrAuthRequired
	}
	question, err := h.questions.Question(r.Context(), key.UserID, key.InterviewID, key.Index)
	if err != nil {
		return nil, err
	}
	return h.registry.Open(key, question), nil
}

func (h *SessionHandler) existing(key session.Key) (*session.Session, error) {
	s, ok := h.registry.Get(key)
	if !ok {
		return nil, errSessionNotFound
	}
	return s, nil
}

// apply runs one capture action against s.
func apply(ctx context.Context, s *session.Session, action string, segments []models.Segment) (session.Snapshot, error) {
	switch action {
	case ActionStart:
		return s.Start()
	case ActionSegments:
		return s.ReceiveSegments(segments)
	case ActionCancel:
		return s.Cancel()
	case ActionStop:
		return s.Stop(ctx)
	case ActionReset:
		return s.RecordAgain()
	case ActionSaveRequest:
		return s.RequestSave()
	case ActionSaveDismiss:
		return s.DismissSave()
	case ActionConfirm:
		return s.Confirm(ctx)
	}
	return s.Snapshot(), errUnknownAction
}

var errUnknownAction = &models.ErrorResponse{Code: "unknown_action", Message: "unknown capture session action"}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, snap session.Snapshot, err error) {
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, snap)
}

// StartHandler opens the session for the question and begins capture.
func (h *SessionHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKey(r)
	if !ok {
		writeInvalidIndex(w)
		return
	}
	s, err := h.open(r, key)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	snap, err := s.Start()
	h.respond(w, r, snap, err)
}

// GetHandler returns the session snapshot, opening an idle session when none exists.
func (h *SessionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKey(r)
	if !ok {
		writeInvalidIndex(w)
		return
	}
	s, err := h.existing(key)
	if err != nil {
		if s, err = h.open(r, key); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	utils.JSON(w, http.StatusOK, s.Snapshot())
}

// CloseHandler discards the session, cancelling any evaluation in flight.
func (h *SessionHandler) CloseHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKey(r)
	if !ok {
		writeInvalidIndex(w)
		return
	}
	if !h.registry.Remove(key) {
		writeError(w, r, h.logger, errSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) SegmentsHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKey(r)
	if !ok {
		writeInvalidIndex(w)
		return
	}
	s, err := h.existing(key)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req := middleware.GetValidatedRequest[*models.SegmentsRequest](r)
	snap, err := s.ReceiveSegments(req.Segments)
	h.respond(w, r, snap, err)
}

// ActionHandler serves POST .../session/{action}.
func (h *SessionHandler) ActionHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKey(r)
	if !ok {
		writeInvalidIndex(w)
		return
	}
	action := chi.URLParam(r, "action")
	switch action {
	case ActionCancel, ActionStop, ActionReset, ActionSaveRequest, ActionSaveDismiss, ActionConfirm:
	default:
		utils.JSON(w, http.StatusNotFound, *errUnknownAction)
		return
	}
	s, err := h.existing(key)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	snap, err := apply(r.Context(), s, action, nil)
	h.respond(w, r, snap, err)
}

type streamMessage struct {
	Action   string           `json:"action"`
	Segments []models.Segment `json:"segments,omitempty"`
}

type streamFrame struct {
	Type     string                `json:"type"` // "snapshot" | "error"
	Action   string                `json:"action,omitempty"`
	Snapshot *session.Snapshot     `json:"snapshot,omitempty"`
	Error    *models.ErrorResponse `json:"error,omitempty"`
}

// streamConn serialises writes; gorilla connections allow a single writer.
type streamConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *streamConn) send(frame streamFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(frame)
}

func (c *streamConn) reply(action string, snap session.Snapshot, err error) error {
	if err != nil {
		_, resp := errorResponse(err)
		return c.send(streamFrame{Type: "error", Action: action, Error: &resp})
	}
	return c.send(streamFrame{Type: "snapshot", Action: action, Snapshot: &snap})
}

// StreamHandler upgrades to a websocket carrying capture actions. The client
// sends {"action","segments"} messages and receives a snapshot or error frame
// for each. Stop and confirm run in the background so a reset can interrupt them.
// Closing the socket aborts an evaluation still in flight.
func (h *SessionHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKey(r)
	if !ok {
		writeInvalidIndex(w)
		return
	}
	s, err := h.open(r, key)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxStreamMessageBytes)

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	out := &streamConn{conn: conn}
	if err := out.reply("", s.Snapshot(), nil); err != nil {
		return
	}

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		if msg.Action == ActionSegments && msg.Segments == nil {
			out.reply(msg.Action, s.Snapshot(), &models.ErrorResponse{Code: "missing_segments", Message: "segments field is required"})
			continue
		}

		switch msg.Action {
		case ActionStop, ActionConfirm:
			wg.Add(1)
			go func(action string) {
				defer wg.Done()
				snap, err := apply(ctx, s, action, nil)
				out.reply(action, snap, err)
			}(msg.Action)
		default:
			snap, err := apply(ctx, s, msg.Action, msg.Segments)
			if err := out.reply(msg.Action, snap, err); err != nil {
				return
			}
		}
	}
}
