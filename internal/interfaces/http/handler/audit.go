package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appaudit "github.com/uxlens/backend/internal/application/audit"
	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
	"github.com/uxlens/backend/internal/domain/shared"
	"github.com/uxlens/backend/internal/infrastructure/capture"
	"github.com/uxlens/backend/internal/infrastructure/logger"
	"github.com/uxlens/backend/internal/interfaces/http/dto"
)

// MaxImageBytes caps uploaded screenshots at 5 MB
const MaxImageBytes = 5 << 20

// AuditService runs audits. Satisfied by the application engine.
type AuditService interface {
	Run(ctx context.Context, input appaudit.AuditInput) (*appaudit.Outcome, error)
	RunFromImage(ctx context.Context, input appaudit.ImageAuditInput) (*appaudit.Outcome, error)
}

// TierResolver maps an unlock token to an access tier. A missing or invalid
// token resolves to the free tier, never to an error.
type TierResolver interface {
	ResolveTier(token string) audit.AccessTier
}

// AuditHandler handles audit API endpoints
type AuditHandler struct {
	BaseHandler
	service  AuditService
	repo     audit.Repository
	tiers    TierResolver
	exporter *appaudit.Exporter
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditService, repo audit.Repository, tiers TierResolver) *AuditHandler {
	return &AuditHandler{
		service:  service,
		repo:     repo,
		tiers:    tiers,
		exporter: appaudit.NewExporter(),
	}
}

// RegisterRoutes registers audit routes on the API group
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	audits := rg.Group("/audits")
	audits.POST("/url", h.CreateFromURL)
	audits.POST("/image", h.CreateFromImage)
	audits.GET("/:id", h.GetAudit)
	audits.GET("/:id/export", h.ExportAudit)
}

// CreateFromURL runs an audit against a live page URL
func (h *AuditHandler) CreateFromURL(c *gin.Context) {
	var req dto.AuditFromURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		h.BadRequest(c, "url must use the http or https scheme")
		return
	}

	outcome, runErr := h.service.Run(c.Request.Context(), appaudit.AuditInput{
		URL:           req.URL,
		PageType:      catalog.PageType(req.PageType),
		Context:       req.Context,
		Tier:          h.resolveTier(c, req.UnlockToken, req.AccessLevel),
		CorrelationID: getCorrelationID(c),
	})
	if runErr != nil {
		h.captureUnavailable(c, runErr)
		return
	}

	c.Header("X-Correlation-ID", outcome.CorrelationID)
	h.Success(c, dto.NewAuditResponse(outcome))
}

// CreateFromImage runs an audit against an uploaded screenshot
func (h *AuditHandler) CreateFromImage(c *gin.Context) {
	var form dto.AuditFromImageForm
	if err := c.ShouldBind(&form); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		h.BadRequest(c, "An image file is required")
		return
	}
	if file.Size > MaxImageBytes {
		h.PayloadTooLarge(c, "Image exceeds the 5 MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded image")
		return
	}
	defer src.Close()

	image, err := io.ReadAll(io.LimitReader(src, MaxImageBytes+1))
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded image")
		return
	}
	if int64(len(image)) > MaxImageBytes {
		h.PayloadTooLarge(c, "Image exceeds the 5 MB limit")
		return
	}

	contentType := imageContentType(image)
	if contentType == "" {
		h.BadRequest(c, "Image must be PNG or JPEG")
		return
	}

	outcome, runErr := h.service.RunFromImage(c.Request.Context(), appaudit.ImageAuditInput{
		Image:         image,
		ContentType:   contentType,
		PageType:      catalog.PageType(form.PageType),
		Context:       form.Context,
		Tier:          h.resolveTier(c, form.UnlockToken, form.AccessLevel),
		CorrelationID: getCorrelationID(c),
	})
	if runErr != nil {
		// The image path has no capture stage, so this is a contract bug
		logger.FromGin(c).Error("Image audit failed unexpectedly", zap.Error(runErr))
		h.InternalError(c, "The audit could not be completed")
		return
	}

	c.Header("X-Correlation-ID", outcome.CorrelationID)
	h.Success(c, dto.NewAuditResponse(outcome))
}

// GetAudit returns a stored audit, scoped to the caller's tier
func (h *AuditHandler) GetAudit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	rec, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Audit not found")
			return
		}
		logger.FromGin(c).Error("Audit lookup failed", zap.Error(err))
		h.InternalError(c, "Unable to load the audit")
		return
	}

	tier := h.resolveTier(c, c.Query("unlock_token"), "")
	h.Success(c, dto.NewAuditRecordResponse(rec, tier))
}

// ExportAudit renders a stored audit as a downloadable HTML or JSON document
func (h *AuditHandler) ExportAudit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	rec, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Audit not found")
			return
		}
		logger.FromGin(c).Error("Audit lookup failed", zap.Error(err))
		h.InternalError(c, "Unable to load the audit")
		return
	}

	format := c.DefaultQuery("format", appaudit.FormatJSON)
	data, contentType, err := h.exporter.Export(rec, format)
	if err != nil {
		h.BadRequest(c, "format must be html or json")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "audit-"+rec.ID.String()+"."+format))
	c.Data(http.StatusOK, contentType, data)
}

// resolveTier determines the effective access tier for a request. The unlock
// token is authoritative; a declared access level can only lower the tier the
// token grants, never raise it.
func (h *AuditHandler) resolveTier(c *gin.Context, token, declared string) audit.AccessTier {
	if token == "" {
		token = bearerToken(c)
	}
	tier := h.tiers.ResolveTier(token)

	if d := audit.AccessTier(declared); d.IsValid() && tierRank(d) < tierRank(tier) {
		tier = d
	}
	return tier
}

func tierRank(t audit.AccessTier) int {
	switch t {
	case audit.TierFull:
		return 2
	case audit.TierEarlyAccess:
		return 1
	default:
		return 0
	}
}

// captureUnavailable maps a capture environment failure to a 503 with a
// remediation hint code
func (h *AuditHandler) captureUnavailable(c *gin.Context, err error) {
	var cerr *capture.CaptureError
	if !errors.As(err, &cerr) {
		logger.FromGin(c).Error("Audit failed unexpectedly", zap.Error(err))
		h.InternalError(c, "The audit could not be completed")
		return
	}

	logger.FromGin(c).Warn("Capture environment unavailable",
		zap.String("code", cerr.Code),
		zap.Error(cerr),
	)
	h.ServiceUnavailable(c, hintCodeFor(cerr), "Screenshot capture is unavailable for this deployment")
}

// hintCodeFor translates internal capture error codes into the public
// remediation codes
func hintCodeFor(err *capture.CaptureError) string {
	switch err.Code {
	case capture.ErrCodeWorkerUnset, capture.ErrCodeEdgeRuntimeUnavailable:
		return dto.CodeWorkerUnset
	case capture.ErrCodeWorkerFailed:
		return dto.CodeWorkerFailed
	case capture.ErrCodeBinaryNotFound, capture.ErrCodeAssetsMissing:
		return dto.CodeChromiumUnavailable
	default:
		return dto.CodeChromiumFailed
	}
}

// imageContentType returns the sniffed content type for an upload, or ""
// when the bytes are neither PNG nor JPEG. The declared multipart header is
// ignored: clients routinely send generic or wrong types.
func imageContentType(image []byte) string {
	switch sniffed := http.DetectContentType(image); sniffed {
	case "image/png", "image/jpeg":
		return sniffed
	default:
		return ""
	}
}
