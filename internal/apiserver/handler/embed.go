package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/agentic-hq/agentic/internal/apiserver/biz"
	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/response"
)

// EmbedHandler handles the anonymous widget surface under /v1/embed/:token.
type EmbedHandler struct {
	embed *biz.EmbedService
}

// NewEmbedHandler creates a new EmbedHandler.
func NewEmbedHandler(embed *biz.EmbedService) *EmbedHandler {
	return &EmbedHandler{embed: embed}
}

// Info handles GET /v1/embed/:token/info.
func (h *EmbedHandler) Info(c *gin.Context) {
	agent, err := h.embed.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OKFields(c, gin.H{
		"agent_name":  agent.Name,
		"domain":      agent.Domain,
		"description": agent.Description,
	})
}

// Config handles GET /v1/embed/:token/config. The config is emitted twice,
// nested under data and flat next to success. Older widget builds read the
// flat copy; both shapes must stay on the wire.
func (h *EmbedHandler) Config(c *gin.Context) {
	cfg, err := h.embed.Config(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OKFields(c, gin.H{
		"data":   gin.H{"config": cfg},
		"config": cfg,
	})
}

type embedQueryRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id"`
}

// Query handles POST /v1/embed/:token/query.
func (h *EmbedHandler) Query(c *gin.Context) {
	var req embedQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrEmptyQuery)
		return
	}

	result, err := h.embed.Query(c.Request.Context(), c.Param("token"), req.Query, req.ConversationID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OKMeta(c,
		gin.H{
			"answer":     result.Answer,
			"message_id": result.MessageID,
		},
		gin.H{
			"response_time_ms": result.ResponseTimeMs,
			"tokens_used":      result.TokensUsed,
		},
		result.RequestID,
	)
}

type feedbackRequest struct {
	MessageID string `json:"message_id"`
	Type      string `json:"type"`
	Comment   string `json:"comment"`
}

// Feedback handles POST /v1/embed/:token/feedback.
func (h *EmbedHandler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err))
		return
	}

	err := h.embed.Feedback(c.Request.Context(), c.Param("token"), req.MessageID, req.Type, req.Comment)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{})
}

type analyticsRequest struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// Analytics handles POST /v1/embed/:token/analytics.
func (h *EmbedHandler) Analytics(c *gin.Context) {
	var req analyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err))
		return
	}
	if req.Event == "" {
		response.Fail(c, errors.ErrMissingParam.WithMessage("event is required"))
		return
	}

	if err := h.embed.Analytics(c.Request.Context(), c.Param("token"), req.Event, req.Data); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{})
}

// Conversation handles GET /v1/embed/:token/conversation. Conversation
// history lives client-side; the server only confirms the token is live.
func (h *EmbedHandler) Conversation(c *gin.Context) {
	if _, err := h.embed.Resolve(c.Request.Context(), c.Param("token")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{"messages": []gin.H{}})
}

// ClearConversation handles DELETE /v1/embed/:token/conversation.
func (h *EmbedHandler) ClearConversation(c *gin.Context) {
	err := h.embed.ClearConversation(c.Request.Context(), c.Param("token"), c.Query("conversation_id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{})
}
