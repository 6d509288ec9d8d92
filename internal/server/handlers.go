package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/healthyoda/intake/internal/chat"
)

// chatRequest is the /chat/stream request body.
type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// sseEvent is one server-sent event frame. Exactly one of the optional
// fields is populated per type.
type sseEvent struct {
	Type string `json:"type"`

	Token          string          `json:"token,omitempty"`
	FullResponse   string          `json:"full_response,omitempty"`
	TurnID         string          `json:"turn_id,omitempty"`
	TreeBranchInfo *treeBranchInfo `json:"tree_branch_info,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// treeBranchInfo tells the frontend which question-book branch informed
// the reply.
type treeBranchInfo struct {
	TreeBranch  string   `json:"tree_branch"`
	Tags        []string `json:"tags"`
	RAGQuestion string   `json:"rag_question,omitempty"`
}

// handleChatStream runs one conversation turn and streams the reply as
// SSE. The event sequence is thinking_complete, token*, then done or
// error.
func (s *Server) handleChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: No JSON data provided"})
		return
	}
	if req.Question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	writeEvent(c, sseEvent{Type: "thinking_complete"})

	turn, err := s.service.Stream(c.Request.Context(), req.SessionID, req.Question, func(token string) error {
		return writeEvent(c, sseEvent{Type: "token", Token: token})
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeEvent(c, sseEvent{Type: "error", Error: "Invalid question format"})
			return
		}
		s.log.Error().Err(err).Str("session", req.SessionID).Msg("chat turn failed")
		writeEvent(c, sseEvent{Type: "error", Error: "Error generating response"})
		return
	}

	info := &treeBranchInfo{
		TreeBranch: "No question-book match (using general system prompt)",
		Tags:       []string{},
	}
	if turn.Hint != nil {
		info = &treeBranchInfo{
			TreeBranch:  turn.Hint.TreePath(),
			Tags:        turn.Hint.Tags(),
			RAGQuestion: turn.Hint.Question,
		}
	}
	writeEvent(c, sseEvent{
		Type:           "done",
		FullResponse:   turn.Text,
		TurnID:         turn.ID,
		TreeBranchInfo: info,
	})
}

// writeEvent flushes one SSE frame.
func writeEvent(c *gin.Context, ev sseEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := c.Writer.WriteString("data: " + string(data) + "\n\n"); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// historyMessage is the wire form of one conversation message.
type historyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *Server) handleGetHistory(c *gin.Context) {
	sessionID := c.Param("user")
	if !chat.ValidSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	msgs := s.service.History().Window(sessionID, 0)
	out := make([]historyMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, historyMessage{Role: string(m.Role), Content: m.Content})
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	sessionID := c.Param("user")
	if !chat.ValidSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	s.service.History().Clear(sessionID)
	c.JSON(http.StatusOK, gin.H{"message": "History cleared"})
}

// feedbackRequest is the /feedback request body.
type feedbackRequest struct {
	TurnID  string `json:"turn_id"`
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: No JSON data provided"})
		return
	}
	if req.TurnID == "" || req.Rating == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "turn_id and rating are required"})
		return
	}
	if !chat.ValidSessionID(req.TurnID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid turn_id format"})
		return
	}
	if req.Rating != "thumbs_up" && req.Rating != "thumbs_down" {
		c.JSON(http.StatusBadRequest, gin.H{"error": `rating must be "thumbs_up" or "thumbs_down"`})
		return
	}
	comment := chat.SanitizeInput(req.Comment, 500)

	if !s.recorder.AddFeedback(c.Request.Context(), req.TurnID, req.Rating, comment) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown turn_id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted successfully", "turn_id": req.TurnID})
}

// handleStats reports in-memory evaluation statistics, plus the
// persisted event-log summary when a store is configured.
func (s *Server) handleStats(c *gin.Context) {
	resp := gin.H{"evaluation": s.recorder.Statistics()}
	if s.store != nil {
		sum, err := s.store.Summarize(c.Request.Context())
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to summarize event log")
		} else {
			resp["events"] = sum
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
