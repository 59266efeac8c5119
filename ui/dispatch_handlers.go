package ui

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"prithvipulse/adapters/backend"
	"prithvipulse/adapters/excel"
	"prithvipulse/domain/core"
	"prithvipulse/internal/errors"
	"prithvipulse/internal/report"
	"prithvipulse/models"
)

// onSurface runs call under the caller's surface when X-Client-ID is set. The
// second result is false when a response was already written, either because
// the client id is invalid or because a newer request superseded this one.
func onSurface[T any](s *Server, c *gin.Context, op string, call func(ctx context.Context) models.Dispatched[T]) (models.Dispatched[T], bool) {
	raw := c.GetHeader(HeaderClientID)
	if raw == "" {
		return call(c.Request.Context()), true
	}

	clientID, err := core.ParseClientID(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return models.Dispatched[T]{}, false
	}

	ticket := s.surfaces.Begin(c.Request.Context(), clientID.String()+"/"+op)
	defer ticket.Release()

	out := call(ticket.Context())
	if !ticket.Commit() {
		s.logger.Debug("[Gateway] dropped stale %s response seq=%d client=%s: %v", op, ticket.Seq(), clientID, context.Cause(ticket.Context()))
		c.JSON(http.StatusConflict, gin.H{"error": "superseded"})
		return out, false
	}
	return out, true
}

func writeOutcomeHeaders(c *gin.Context, o models.Outcome) {
	c.Header(HeaderDispatchSource, string(o.Source))
	c.Header(HeaderFailureClass, string(o.Failure))
	if o.RequestID != "" {
		c.Header(backend.HeaderRequestID, o.RequestID)
	}
}

type validator interface {
	Validate() error
}

func writeDispatched[T any](s *Server, c *gin.Context, out models.Dispatched[T]) {
	if v, ok := any(out.Value).(validator); ok {
		if err := v.Validate(); err != nil {
			s.logger.Debug("[Gateway] %s result breaks invariant request_id=%s: %v", out.Outcome.Operation, out.Outcome.RequestID, err)
		}
	}
	writeOutcomeHeaders(c, out.Outcome)
	c.JSON(http.StatusOK, out.Value)
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

// readUpload pulls the leaf image and language out of a multipart form
func readUpload(c *gin.Context) (models.ImageUpload, error) {
	header, err := c.FormFile(backend.FieldFile)
	if err != nil {
		return models.ImageUpload{}, errors.InvalidInput("multipart field \"file\" is required")
	}
	if header.Size > maxUploadBytes {
		return models.ImageUpload{}, errors.InvalidInput("image exceeds 10MB")
	}

	f, err := header.Open()
	if err != nil {
		return models.ImageUpload{}, errors.Wrap(err, "failed to open upload")
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return models.ImageUpload{}, errors.Wrap(err, "failed to read upload")
	}
	if len(content) == 0 {
		return models.ImageUpload{}, errors.InvalidInput(core.ErrEmptyUpload.Error())
	}

	return models.ImageUpload{
		Filename: header.Filename,
		Content:  content,
		Language: c.PostForm(backend.FieldLanguage),
	}, nil
}

func (s *Server) diagnose(c *gin.Context) (models.Dispatched[models.DiagnosisResult], bool) {
	upload, err := readUpload(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return models.Dispatched[models.DiagnosisResult]{}, false
	}
	return onSurface(s, c, models.OpDiagnose, func(ctx context.Context) models.Dispatched[models.DiagnosisResult] {
		return s.dispatcher.Diagnose(ctx, upload)
	})
}

func (s *Server) handleScan(c *gin.Context) {
	if out, ok := s.diagnose(c); ok {
		writeDispatched(s, c, out)
	}
}

func (s *Server) handleScanReport(c *gin.Context) {
	out, ok := s.diagnose(c)
	if !ok {
		return
	}
	writeOutcomeHeaders(c, out.Outcome)
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.DiagnosisHTML(out.Value, out.Outcome))
}

func (s *Server) handleSmartPlan(c *gin.Context) {
	var req models.SmartPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return
	}
	if out, ok := onSurface(s, c, models.OpSmartPlan, func(ctx context.Context) models.Dispatched[models.SmartPlanResponse] {
		return s.dispatcher.SmartPlan(ctx, req)
	}); ok {
		writeDispatched(s, c, out)
	}
}

func (s *Server) handleExecutionPlan(c *gin.Context) {
	var req models.ExecutionPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return
	}
	if out, ok := onSurface(s, c, models.OpExecutionPlan, func(ctx context.Context) models.Dispatched[models.ExecutionPlanResponse] {
		return s.dispatcher.ExecutionPlan(ctx, req)
	}); ok {
		writeDispatched(s, c, out)
	}
}

func (s *Server) handleFarmPlan(c *gin.Context) {
	var req models.FarmPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return
	}
	if out, ok := onSurface(s, c, models.OpFarmPlan, func(ctx context.Context) models.Dispatched[models.FarmPlanResponse] {
		return s.dispatcher.FarmPlan(ctx, req)
	}); ok {
		writeDispatched(s, c, out)
	}
}

func (s *Server) handleCropAdvisory(c *gin.Context) {
	var req models.CropAdvisoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return
	}
	if out, ok := onSurface(s, c, models.OpCropAdvisory, func(ctx context.Context) models.Dispatched[models.CropAdvisoryResponse] {
		return s.dispatcher.CropAdvisory(ctx, req)
	}); ok {
		writeDispatched(s, c, out)
	}
}

func (s *Server) handleMarketTrends(c *gin.Context) {
	var req models.MarketTrendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return
	}
	req.Region = strings.TrimSpace(req.Region)
	if req.Region == "" {
		respondError(c, http.StatusBadRequest, errors.InvalidInput(core.ErrMissingRegion.Error()))
		return
	}
	if out, ok := onSurface(s, c, models.OpMarketTrends, func(ctx context.Context) models.Dispatched[models.MarketTrendsResponse] {
		return s.dispatcher.MarketTrends(ctx, req)
	}); ok {
		writeDispatched(s, c, out)
	}
}

func (s *Server) latestSnapshot(c *gin.Context) (models.MarketTrendsResponse, bool) {
	snapshot, err := s.dispatcher.LatestMarketSnapshot(c.Param("region"))
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		respondError(c, status, err)
		return snapshot, false
	}
	return snapshot, true
}

func (s *Server) handleLatestMarket(c *gin.Context) {
	if snapshot, ok := s.latestSnapshot(c); ok {
		c.Header(HeaderDispatchSource, string(models.SourceBackend))
		c.JSON(http.StatusOK, snapshot)
	}
}

func (s *Server) handleMarketExport(c *gin.Context) {
	snapshot, ok := s.latestSnapshot(c)
	if !ok {
		return
	}
	filename := "market-" + strings.ToLower(strings.ReplaceAll(strings.TrimSpace(c.Param("region")), " ", "-")) + ".xlsx"
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if _, err := excel.NewMarketWriter(snapshot).WriteTo(c.Writer); err != nil {
		s.logger.Error("[Gateway] market export for %s failed: %v", snapshot.Region, err)
	}
}
