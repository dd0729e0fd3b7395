package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	reportapp "github.com/fieldsales/backend/internal/application/report"
	"github.com/fieldsales/backend/internal/domain/report"
	"github.com/fieldsales/backend/internal/infrastructure/logger"
	"github.com/fieldsales/backend/internal/infrastructure/spreadsheet"
	"github.com/fieldsales/backend/internal/interfaces/http/dto"
	"github.com/fieldsales/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SalesReportHandler serves the report endpoints
type SalesReportHandler struct {
	BaseHandler
	reports  *reportapp.ReportService
	exporter *spreadsheet.Exporter
}

// NewSalesReportHandler creates a new SalesReportHandler
func NewSalesReportHandler(reports *reportapp.ReportService, exporter *spreadsheet.Exporter) *SalesReportHandler {
	if exporter == nil {
		exporter = spreadsheet.NewExporter()
	}
	return &SalesReportHandler{reports: reports, exporter: exporter}
}

// bindReport reads the report query. ok is false once a response is written.
func (h *SalesReportHandler) bindReport(c *gin.Context) (context.Context, reportapp.ReportRequest, bool) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return nil, reportapp.ReportRequest{}, false
	}

	ctx := c.Request.Context()
	if code := strings.TrimSpace(q.Code); code != "" {
		ctx, _ = logger.WithEmployeeCode(ctx, logger.GetGinLogger(c), code)
	}
	return ctx, reportapp.ReportRequest{
		Code:       q.Code,
		TDFormat:   q.TDFormat,
		DataFormat: q.DataFormat,
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
	}, true
}

// Dashboard handles GET /sales/dashboard
func (h *SalesReportHandler) Dashboard(c *gin.Context) {
	ctx, req, ok := h.bindReport(c)
	if !ok {
		return
	}
	d, err := h.reports.BuildDashboard(ctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// ChannelWise handles GET /sales/channel-wise
func (h *SalesReportHandler) ChannelWise(c *gin.Context) {
	ctx, req, ok := h.bindReport(c)
	if !ok {
		return
	}
	rep, err := h.reports.BuildChannelReport(ctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// ChannelWiseExport handles GET /sales/channel-wise/export and answers the
// channel report as a workbook
func (h *SalesReportHandler) ChannelWiseExport(c *gin.Context) {
	ctx, req, ok := h.bindReport(c)
	if !ok {
		return
	}
	rep, err := h.reports.BuildChannelReport(ctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.writeWorkbook(c, "Channel Wise", "channel-wise", rep)
}

// ModelWise handles GET /sales/model-wise
func (h *SalesReportHandler) ModelWise(c *gin.Context) {
	ctx, req, ok := h.bindReport(c)
	if !ok {
		return
	}
	rep, err := h.reports.BuildModelReport(ctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// Market handles GET /sales/market
func (h *SalesReportHandler) Market(c *gin.Context) {
	ctx, req, ok := h.bindReport(c)
	if !ok {
		return
	}
	rep, err := h.reports.BuildMarketReport(ctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// Employee handles GET /sales/employees/:code
func (h *SalesReportHandler) Employee(c *gin.Context) {
	e, err := h.reports.Employee(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.EmployeeResponse{Code: e.Code, Name: e.Name, Position: string(e.Position)})
}

func (h *SalesReportHandler) writeWorkbook(c *gin.Context, sheet, name string, rep *report.Report) {
	wb, err := h.exporter.Export(sheet, rep)
	if err != nil {
		h.HandleError(c, fmt.Errorf("failed to build workbook: %w", err))
		return
	}
	defer func() {
		if err := wb.Close(); err != nil {
			logger.GetGinLogger(c).Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	buf, err := wb.WriteToBuffer()
	if err != nil {
		h.HandleError(c, fmt.Errorf("failed to write workbook: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, name))
	c.Data(http.StatusOK, spreadsheet.ContentType, buf.Bytes())
}
