package report

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/platformwatch/evidence/internal/evidence"
)

type evidenceLister interface {
	ListEvidence(ctx context.Context, reportID string) ([]evidence.Record, error)
}

// RegisterRoutes mounts report operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service, evidenceSvc evidenceLister) {
	handler := &httpHandler{service: service, evidence: evidenceSvc}
	group.POST("/reports", handler.createReport)
	group.GET("/reports", handler.listReports)
	group.GET("/reports/:reportID", handler.getReport)
	group.GET("/reports/:reportID/evidence", handler.listEvidence)
}

type httpHandler struct {
	service  *Service
	evidence evidenceLister
}

func (h *httpHandler) createReport(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rep, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		switch err {
		case ErrMissingTitle, ErrInvalidCategory:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		}
		return
	}

	c.JSON(http.StatusCreated, rep)
}

func (h *httpHandler) listReports(c *gin.Context) {
	q := ListQuery{
		Search:   c.Query("search"),
		Category: c.DefaultQuery("category", "all"),
		Status:   c.DefaultQuery("status", "all"),
		SortBy:   c.DefaultQuery("sortBy", "newest"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", defaultPageSize),
	}

	result, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reports"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *httpHandler) getReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("reportID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	rep, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if err == ErrReportNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch report"})
		return
	}

	c.JSON(http.StatusOK, rep)
}

func (h *httpHandler) listEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("reportID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	records, err := h.evidence.ListEvidence(c.Request.Context(), id.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list evidence"})
		return
	}
	if records == nil {
		records = []evidence.Record{}
	}

	c.JSON(http.StatusOK, gin.H{"evidence": records})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}
