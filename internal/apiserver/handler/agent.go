package handler

import (
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/agentic-hq/agentic/internal/apiserver/biz"
	"github.com/agentic-hq/agentic/internal/apiserver/engine"
	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/middleware"
	"github.com/agentic-hq/agentic/pkg/response"
)

// maxUploadMemory bounds in-memory buffering of multipart uploads.
const maxUploadMemory = 32 << 20

// AgentHandler handles agent lifecycle and authenticated chat.
type AgentHandler struct {
	agents *biz.AgentService
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(agents *biz.AgentService) *AgentHandler {
	return &AgentHandler{agents: agents}
}

func currentUserID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(middleware.GetUserID(c), 10, 64)
	if err != nil {
		response.Fail(c, errors.ErrLoginRequired)
		return 0, false
	}
	return id, true
}

// List handles GET /api/agents.
func (h *AgentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	views, err := h.agents.List(c.Request.Context(), userID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	agents := make([]gin.H, 0, len(views))
	for _, v := range views {
		agents = append(agents, agentView(v))
	}
	response.OKFields(c, gin.H{"agents": agents})
}

// Get handles GET /api/agents/:name.
func (h *AgentHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.agents.Get(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{"agent": agentView(view)})
}

// Create handles POST /api/agents/create, a multipart form with document
// uploads.
func (h *AgentHandler) Create(c *gin.Context) {
	h.create(c, "")
}

// CreateFromSource handles POST /api/agents/create-from-source. The form
// carries a source_type and source-specific fields next to any uploads.
func (h *AgentHandler) CreateFromSource(c *gin.Context) {
	h.create(c, c.PostForm("source_type"))
}

func (h *AgentHandler) create(c *gin.Context, sourceType string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err))
		return
	}

	name := c.PostForm("agent_name")
	if name == "" {
		response.Fail(c, errors.ErrMissingParam.WithMessage("agent_name is required"))
		return
	}

	docs, err := formDocuments(c)
	if err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err))
		return
	}

	extra := map[string]string{}
	if cs := c.PostForm("connection_string"); cs != "" {
		extra["connection_string"] = cs
	}

	agent, err := h.agents.Create(c.Request.Context(), userID,
		name, c.PostForm("domain"), c.PostForm("description"), sourceType, docs, extra)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	logger.Infow("agent created",
		"agent", agent.Name,
		"user_id", userID,
		"source_type", agent.SourceType,
		"documents", len(docs),
	)
	response.OKFields(c, gin.H{"agent": gin.H{"agent_name": agent.Name}})
}

// Update handles POST /api/agents/:name/update, ingesting more documents.
func (h *AgentHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err))
		return
	}
	docs, err := formDocuments(c)
	if err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err))
		return
	}

	if err := h.agents.Update(c.Request.Context(), userID, c.Param("name"), docs); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{})
}

// Delete handles DELETE /api/agents/:name.
func (h *AgentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.agents.Delete(c.Request.Context(), userID, c.Param("name")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{})
}

// MintEmbedToken handles POST /api/agents/:name/embed-token.
func (h *AgentHandler) MintEmbedToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	token, err := h.agents.MintEmbedToken(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OKFields(c, gin.H{"embed_token": token})
}

type queryRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"k"`
}

// Query handles POST /api/agents/:name/query. The answer sits flat next to
// "success", unlike the embed surface.
func (h *AgentHandler) Query(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrValidationFailed.WithCause(err))
		return
	}

	result, err := h.agents.Query(c.Request.Context(), userID, c.Param("name"), req.Query, req.TopK)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OKFields(c, gin.H{
		"answer":           result.Answer,
		"source_documents": sourceDocuments(result.SourceDocuments),
	})
}

// QueryStream handles POST /api/agents/:name/query/stream, relaying the
// engine's SSE stream to the browser.
func (h *AgentHandler) QueryStream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrValidationFailed.WithCause(err))
		return
	}

	stream, err := h.agents.QueryStream(c.Request.Context(), userID, c.Param("name"), req.Query, req.TopK)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	defer func() { _ = stream.Close() }()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	start := time.Now()
	written, copyErr := io.Copy(c.Writer, stream)
	if copyErr != nil {
		logger.Warnw("stream relay interrupted",
			"agent", c.Param("name"),
			"bytes", written,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", copyErr.Error(),
		)
	}
}

func formDocuments(c *gin.Context) ([]engine.Document, error) {
	form := c.Request.MultipartForm
	if form == nil {
		return nil, nil
	}

	var docs []engine.Document
	for _, header := range form.File["files"] {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		docs = append(docs, engine.Document{Name: header.Filename, Content: content})
	}
	return docs, nil
}

func agentView(v *biz.AgentView) gin.H {
	out := gin.H{
		"agent_name":  v.Name,
		"domain":      v.Domain,
		"description": v.Description,
		"created_at":  time.UnixMilli(v.CreatedAt).UTC().Format(time.RFC3339),
	}
	if v.EmbedToken != "" {
		out["embed_token"] = v.EmbedToken
	}
	return out
}

func sourceDocuments(docs []engine.SourceDocument) []gin.H {
	out := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		doc := gin.H{"content": d.Content}
		if len(d.Metadata) > 0 {
			doc["metadata"] = d.Metadata
		}
		out = append(out, doc)
	}
	return out
}
