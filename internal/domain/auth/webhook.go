package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
	"github.com/yanqian/merchant-insights/pkg/util"
)

// VerifyWebhook compares the base64 HMAC-SHA256 header against the raw request body.
func (s *service) VerifyWebhook(body []byte, signature string) bool {
	if s.cfg.APISecret == "" || strings.TrimSpace(signature) == "" {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.APISecret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}

// RedactShop deletes all data held for a shop. Every purger runs even when an earlier one
// fails; the failures are joined.
func (s *service) RedactShop(ctx context.Context, shopDomain string) error {
	domain := strings.ToLower(strings.TrimSpace(shopDomain))
	if !util.ValidShopDomain(domain) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "shop must be a *.myshopify.com domain", nil)
	}
	shop, _, err := s.resolveShopID(ctx, domain)
	if err != nil {
		return apperrors.Wrap("auth_error", "failed to load shop", err)
	}

	var errs []error
	for _, p := range s.purgers {
		if err := p.PurgeShop(ctx, shop.ID); err != nil {
			s.logger.Error("shop purge failed", "shopId", shop.ID, "error", err)
			errs = append(errs, err)
		}
	}
	if err := s.repo.DeleteShop(ctx, shop.ID); err != nil {
		s.logger.Error("shop delete failed", "shopId", shop.ID, "error", err)
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return apperrors.Wrap("auth_error", "shop redaction incomplete", errors.Join(errs...))
	}
	s.logger.Info("shop redacted", "shop", domain, "shopId", shop.ID)
	return nil
}
