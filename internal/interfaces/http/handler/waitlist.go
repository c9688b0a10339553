package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/waitlist"
	"github.com/uxlens/backend/internal/infrastructure/auth"
	"github.com/uxlens/backend/internal/infrastructure/logger"
	"github.com/uxlens/backend/internal/interfaces/http/dto"
)

// TokenIssuer issues unlock tokens. Satisfied by auth.UnlockService.
type TokenIssuer interface {
	Issue(tier audit.AccessTier, email string) (*auth.UnlockToken, error)
}

// WaitlistHandler handles early access signups
type WaitlistHandler struct {
	BaseHandler
	repo   waitlist.Repository
	tokens TokenIssuer
}

// NewWaitlistHandler creates a new WaitlistHandler
func NewWaitlistHandler(repo waitlist.Repository, tokens TokenIssuer) *WaitlistHandler {
	return &WaitlistHandler{
		repo:   repo,
		tokens: tokens,
	}
}

// RegisterRoutes registers waitlist routes on the API group
func (h *WaitlistHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/waitlist", h.Join)
}

// Join adds an email to the waitlist and returns its unlock token. Signing
// up twice is quiet: the insert is a no-op and a fresh token for the same
// tier is returned.
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req dto.WaitlistJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "A valid email address is required")
		return
	}

	entry, err := waitlist.NewEntry(req.Email)
	if err != nil {
		h.BadRequest(c, "A valid email address is required")
		return
	}

	token, err := h.tokens.Issue(entry.Tier, entry.Email)
	if err != nil {
		logger.FromGin(c).Error("Unlock token issue failed", zap.Error(err))
		h.InternalError(c, "Unable to complete the signup")
		return
	}
	entry.TokenID = token.TokenID

	if err := h.repo.Add(c.Request.Context(), entry); err != nil {
		logger.FromGin(c).Error("Waitlist insert failed", zap.Error(err))
		h.InternalError(c, "Unable to complete the signup")
		return
	}

	h.Created(c, dto.WaitlistJoinResponse{
		Email:       entry.Email,
		Tier:        entry.Tier.String(),
		UnlockToken: token.Token,
		ExpiresAt:   token.ExpiresAt,
	})
}
