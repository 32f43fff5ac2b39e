package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agentic-hq/agentic/internal/apiserver/biz"
	"github.com/agentic-hq/agentic/internal/model"
	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/response"
)

// AdminHandler handles per-account stats and the admin views.
type AdminHandler struct {
	usage *biz.UsageService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(usage *biz.UsageService) *AdminHandler {
	return &AdminHandler{usage: usage}
}

// Stats handles GET /api/user/stats for the calling account.
func (h *AdminHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.usage.Stats(c.Request.Context(), userID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	stats := gin.H{
		"total_queries":     summary.TotalQueries,
		"prompt_tokens":     summary.PromptTokens,
		"completion_tokens": summary.CompletionTokens,
		"total_tokens":      summary.TotalTokens,
	}
	if summary.LastQueryAt > 0 {
		stats["last_query_at"] = time.UnixMilli(summary.LastQueryAt).UTC().Format(time.RFC3339)
	}
	response.OKFields(c, gin.H{"stats": stats})
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.usage.Users(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	views := make([]gin.H, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	response.OKFields(c, gin.H{"users": views})
}

// Usage handles GET /api/admin/usage.
func (h *AdminHandler) Usage(c *gin.Context) {
	rows, err := h.usage.Usage(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{"usage": usageViews(rows)})
}

// UserUsage handles GET /api/admin/usage/:id.
func (h *AdminHandler) UserUsage(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, errors.ErrInvalidParam.WithMessage("invalid user id"))
		return
	}

	rows, err := h.usage.UserUsage(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{"usage": usageViews(rows)})
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		return 100
	}
	return limit
}

func usageViews(rows []*model.Usage) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"user_id":          strconv.FormatUint(row.UserID, 10),
			"agent_id":         row.AgentID,
			"surface":          row.Surface,
			"tokens":           row.TotalTokens,
			"response_time_ms": row.ResponseTimeMs,
			"created_at":       time.UnixMilli(row.CreatedAt).UTC().Format(time.RFC3339),
		})
	}
	return out
}
