package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
)

// AuthHandler drives the Shopify app install flow.
type AuthHandler struct {
	svc    auth.Service
	logger *slog.Logger
}

// NewAuthHandler constructs the install handler.
func NewAuthHandler(svc auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger.With("component", "http.auth")}
}

// Install redirects the merchant to the Shopify consent screen.
func (h *AuthHandler) Install(c *gin.Context) {
	shop := strings.ToLower(strings.TrimSpace(c.Query("shop")))
	state, err := auth.NewInstallState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "install_failed", "failed to create oauth state", err))
		return
	}
	target, err := h.svc.InstallURL(c.Request.Context(), shop, state)
	if err != nil {
		abortWithError(c, fromDomainError(err, "install_failed"))
		return
	}
	setInstallStateCookie(c, state, shop)
	c.Redirect(http.StatusFound, target)
}

// Callback completes the OAuth exchange and sends the merchant back into the admin.
func (h *AuthHandler) Callback(c *gin.Context) {
	query := c.Request.URL.Query()
	stored, ok := readInstallStateCookie(c)
	clearInstallStateCookie(c)
	if !ok || !stored.matches(query.Get("state"), strings.ToLower(strings.TrimSpace(query.Get("shop")))) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_state", "oauth state mismatch", nil))
		return
	}

	result, err := h.svc.CompleteInstall(c.Request.Context(), auth.InstallCallback{Query: query})
	if err != nil {
		abortWithError(c, fromDomainError(err, "install_failed"))
		return
	}
	h.logger.Info("app installed", "shop", result.ShopDomain, "shopId", result.ShopID)
	c.Redirect(http.StatusFound, result.RedirectURL)
}
