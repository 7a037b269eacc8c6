package http

import (
	"net/http"

	"videonet/internal/infrastructure/analysis"
	apperrors "videonet/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler proxies video-analysis requests to the external analysis
// service. Responses pass through verbatim.
type AnalysisHandler struct {
	client *analysis.Client
}

func NewAnalysisHandler(client *analysis.Client) *AnalysisHandler {
	return &AnalysisHandler{client: client}
}

func (h *AnalysisHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/video")
	{
		api.POST("/analyze", h.Analyze)
		api.POST("/chat", h.Chat)
		api.GET("/chat/history/:filename", h.ChatHistory)
		api.DELETE("/chat/history/:filename", h.ClearChatHistory)
	}
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.client.Analyze(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.renderUpstreamError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

func (h *AnalysisHandler) Chat(c *gin.Context) {
	var req analysis.ChatRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Filename == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and message are required"})
		return
	}

	result, err := h.client.Chat(c.Request.Context(), req)
	if err != nil {
		h.renderUpstreamError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

func (h *AnalysisHandler) ChatHistory(c *gin.Context) {
	result, err := h.client.ChatHistory(c.Request.Context(), c.Param("filename"))
	if err != nil {
		h.renderUpstreamError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

func (h *AnalysisHandler) ClearChatHistory(c *gin.Context) {
	result, err := h.client.ClearChatHistory(c.Request.Context(), c.Param("filename"))
	if err != nil {
		h.renderUpstreamError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

func (h *AnalysisHandler) renderUpstreamError(c *gin.Context, err error) {
	appErr := apperrors.NewBadGatewayError(err.Error())
	c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
}
