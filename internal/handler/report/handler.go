package report

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medicloud/docs-api/internal/handler"
	"github.com/medicloud/docs-api/internal/middleware"
	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/service/ai"
	"github.com/medicloud/docs-api/internal/service/report"
)

type Handler struct {
	service *report.Service
	aiSvc   *ai.Service
}

func NewHandler(service *report.Service, aiSvc *ai.Service) *Handler {
	return &Handler{service: service, aiSvc: aiSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	g := r.Group("/reports")
	g.Use(auth.Authenticate())

	g.POST("", h.CreateReport)
	g.GET("", h.ListReports)
	g.GET("/:id", h.GetReport)
	g.POST("/:id/submit", h.Submit)
	g.POST("/:id/review", h.Review)
	g.POST("/:id/sign", h.Sign)

	g.POST("/draft", h.GenerateDraft)
	g.POST("/summarize", h.Summarize)
	g.POST("/illustration", h.GenerateIllustration)
}

func (h *Handler) CreateReport(c *gin.Context) {
	var req model.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rep, err := h.service.CreateDraft(c.Request.Context(), middleware.CurrentUserID(c), &req, req.ImageURL)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rep))
}

func (h *Handler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	rep, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rep))
}

func (h *Handler) ListReports(c *gin.Context) {
	filters := &model.ReportFilters{}

	if status := c.Query("status"); status != "" {
		filters.Status = model.ReportStatus(status)
	}

	if id := c.Query("author_id"); id != "" {
		authorID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid author ID"))
			return
		}
		filters.AuthorID = authorID
	}

	reports, err := h.service.ListReports(c.Request.Context(), filters)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reports))
}

func (h *Handler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	rep, err := h.service.Submit(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rep))
}

func (h *Handler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	var req model.ReviewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rep, err := h.service.Review(c.Request.Context(), id, req.Decision)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rep))
}

func (h *Handler) Sign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	rep, err := h.service.Sign(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rep))
}

func (h *Handler) GenerateDraft(c *gin.Context) {
	var req model.GenerateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	draft, err := h.aiSvc.GenerateDraft(c.Request.Context(), &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.GenerateDraftResponse{
		ReportDraft: draft,
	}))
}

func (h *Handler) Summarize(c *gin.Context) {
	var req model.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	summary, err := h.aiSvc.Summarize(c.Request.Context(), req.TechnicalDetails)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.SummarizeResponse{
		Summary: summary,
	}))
}

// GenerateIllustration always succeeds; an absent image_url means either the
// report type didn't warrant an illustration or generation failed upstream.
func (h *Handler) GenerateIllustration(c *gin.Context) {
	var req struct {
		ReportType string `json:"report_type" binding:"required"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	imageURL := h.aiSvc.GenerateImage(c.Request.Context(), req.ReportType, req.Notes)

	data := gin.H{}
	if imageURL != "" {
		data["image_url"] = imageURL
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(data))
}
