package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
	"github.com/yanqian/merchant-insights/pkg/util"
)

const devShopDomain = "dev-store.myshopify.com"

// Service exposes Shopify app authentication workflows.
type Service interface {
	ValidateSessionToken(ctx context.Context, token string) (Claims, error)
	DevSession() (Claims, bool)
	InstallURL(ctx context.Context, shopDomain, state string) (string, error)
	CompleteInstall(ctx context.Context, cb InstallCallback) (InstallResult, error)
	VerifyWebhook(body []byte, signature string) bool
	RedactShop(ctx context.Context, shopDomain string) error
}

type service struct {
	cfg         Config
	repo        ShopRepository
	purgers     Purgers
	logger      *slog.Logger
	now         func() time.Time
	endpointFor func(shopDomain string) oauth2.Endpoint
}

// NewService constructs a Service instance.
func NewService(cfg Config, repo ShopRepository, purgers Purgers, logger *slog.Logger) Service {
	return &service{
		cfg:         cfg,
		repo:        repo,
		purgers:     purgers,
		logger:      logger.With("component", "auth.service"),
		now:         time.Now,
		endpointFor: shopifyEndpoint,
	}
}

// DevSession returns the fixed local-development shop when one is configured.
func (s *service) DevSession() (Claims, bool) {
	id := strings.TrimSpace(s.cfg.DevShopID)
	if id == "" {
		return Claims{}, false
	}
	return Claims{ShopID: id, ShopDomain: devShopDomain}, true
}

// resolveShopID prefers the stored shop record and falls back to the domain's subdomain.
func (s *service) resolveShopID(ctx context.Context, domain string) (Shop, bool, error) {
	shop, found, err := s.repo.GetShopByDomain(ctx, domain)
	if err != nil {
		return Shop{}, false, err
	}
	if !found {
		return Shop{ID: util.ShopIDFromDomain(domain), Domain: domain}, false, nil
	}
	return shop, true, nil
}

func (s *service) requireSecret() error {
	if strings.TrimSpace(s.cfg.APIKey) == "" || strings.TrimSpace(s.cfg.APISecret) == "" {
		return apperrors.Wrap(apperrors.CodeAuthNotConfigured, "shopify api credentials are not configured", nil)
	}
	return nil
}
