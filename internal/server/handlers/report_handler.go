package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/service/reporting"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the owner's statistics, audit trail and exports.
type ReportHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportHandler constructs the reporting REST adapter.
func NewReportHandler(svc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Register mounts the reporting routes on g.
func (h *ReportHandler) Register(g *gin.RouterGroup) {
	g.GET("/statistics", h.Statistics)
	g.GET("/audit", h.Audit)
	g.GET("/reports/daily", h.DailyReport)
	g.POST("/reports/daily", h.ArchiveDailyReport)
	g.GET("/export.xlsx", h.Export)
}

func (h *ReportHandler) Statistics(c *gin.Context) {
	st, err := h.svc.Statistics(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Audit accepts ?start, ?end, ?q and ?type.
func (h *ReportHandler) Audit(c *gin.Context) {
	var filter models.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	trail, err := h.svc.Audit(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trail)
}

// DailyReport builds the report of ?date (today when absent).
func (h *ReportHandler) DailyReport(c *gin.Context) {
	report, err := h.svc.BuildDailyReport(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) ArchiveDailyReport(c *gin.Context) {
	report, err := h.svc.ArchiveDailyReport(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// Export streams the statistics workbook of [?start, ?end].
func (h *ReportHandler) Export(c *gin.Context) {
	start, end, err := h.svc.ResolveRange(c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.ExportWorkbook(c.Request.Context(), &buf, start, end); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="lirio_%s_%s.xlsx"`, start, end))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
