package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
	"github.com/yanqian/merchant-insights/pkg/util"
)

// sessionClaims mirror the App Bridge session token payload.
type sessionClaims struct {
	jwt.RegisteredClaims
	Dest string `json:"dest"`
	Sid  string `json:"sid"`
}

func (s *service) ValidateSessionToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "session token missing", nil)
	}
	if err := s.requireSecret(); err != nil {
		return Claims{}, err
	}

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.APISecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(s.cfg.APIKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.cfg.SessionLeeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "session token validation failed", err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "session token invalid", nil)
	}

	domain, err := shopHost(claims.Dest)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "session token destination is not a shop", err)
	}
	issuer, err := shopHost(claims.Issuer)
	if err != nil || issuer != domain {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "session token issuer does not match destination", err)
	}

	shop, installed, err := s.resolveShopID(ctx, domain)
	if err != nil {
		return Claims{}, apperrors.Wrap("auth_error", "failed to load shop", err)
	}
	if !installed || shop.AccessToken == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "shop is not installed", nil)
	}

	return Claims{
		ShopID:     shop.ID,
		ShopDomain: domain,
		UserID:     claims.Subject,
		SessionID:  claims.Sid,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

func shopHost(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(u.Hostname())
	if u.Scheme != "https" || !util.ValidShopDomain(host) {
		return "", fmt.Errorf("invalid shop url %q", raw)
	}
	return host, nil
}
