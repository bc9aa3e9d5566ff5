package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/oauth2"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
	"github.com/yanqian/merchant-insights/pkg/util"
)

const callbackPath = "/auth/callback"

func (s *service) InstallURL(ctx context.Context, shopDomain, state string) (string, error) {
	domain := strings.ToLower(strings.TrimSpace(shopDomain))
	if !util.ValidShopDomain(domain) {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "shop must be a *.myshopify.com domain", nil)
	}
	if strings.TrimSpace(state) == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "oauth state missing", nil)
	}
	cfg, err := s.oauthConfig(domain)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("scope", strings.Join(s.cfg.Scopes, ","))), nil
}

func (s *service) CompleteInstall(ctx context.Context, cb InstallCallback) (InstallResult, error) {
	domain := strings.ToLower(strings.TrimSpace(cb.Query.Get("shop")))
	if !util.ValidShopDomain(domain) {
		return InstallResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "shop must be a *.myshopify.com domain", nil)
	}
	cfg, err := s.oauthConfig(domain)
	if err != nil {
		return InstallResult{}, err
	}
	if !verifyQueryHMAC(s.cfg.APISecret, cb.Query) {
		return InstallResult{}, apperrors.Wrap(apperrors.CodeInvalidSignature, "oauth callback signature mismatch", nil)
	}
	code := strings.TrimSpace(cb.Query.Get("code"))
	if code == "" {
		return InstallResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "missing oauth code", nil)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return InstallResult{}, apperrors.Wrap("oauth_exchange_failed", "failed to exchange oauth code", err)
	}
	encrypted, err := encryptToken(s.cfg.TokenEncryptionKey, token.AccessToken)
	if err != nil {
		return InstallResult{}, apperrors.Wrap("auth_error", "failed to encrypt access token", err)
	}
	scope, _ := token.Extra("scope").(string)

	existing, _, err := s.resolveShopID(ctx, domain)
	if err != nil {
		return InstallResult{}, apperrors.Wrap("auth_error", "failed to load shop", err)
	}
	now := s.now().UTC()
	shop, err := s.repo.UpsertShop(ctx, Shop{
		ID:          existing.ID,
		Domain:      domain,
		AccessToken: encrypted,
		Scope:       scope,
		InstalledAt: now,
		UpdatedAt:   now,
	})
	if err != nil {
		return InstallResult{}, apperrors.Wrap("auth_error", "failed to persist shop", err)
	}
	s.logger.Info("shop installed", "shop", shop.Domain, "shopId", shop.ID, "scope", scope)

	redirect := strings.TrimRight(s.cfg.AppURL, "/") + "/dashboard"
	if host := cb.Query.Get("host"); host != "" {
		redirect = "https://" + domain + "/admin/apps/" + url.PathEscape(s.cfg.APIKey) + "?host=" + url.QueryEscape(host)
	}
	return InstallResult{ShopID: shop.ID, ShopDomain: shop.Domain, RedirectURL: redirect}, nil
}

func (s *service) oauthConfig(shopDomain string) (*oauth2.Config, error) {
	if err := s.requireSecret(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.cfg.AppURL) == "" {
		return nil, apperrors.Wrap(apperrors.CodeAuthNotConfigured, "app url is not configured", nil)
	}
	if strings.TrimSpace(s.cfg.TokenEncryptionKey) == "" {
		return nil, apperrors.Wrap(apperrors.CodeAuthNotConfigured, "token encryption key is missing", nil)
	}
	return &oauth2.Config{
		ClientID:     s.cfg.APIKey,
		ClientSecret: s.cfg.APISecret,
		RedirectURL:  strings.TrimRight(s.cfg.AppURL, "/") + callbackPath,
		Endpoint:     s.endpointFor(shopDomain),
	}, nil
}

func shopifyEndpoint(shopDomain string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   "https://" + shopDomain + "/admin/oauth/authorize",
		TokenURL:  "https://" + shopDomain + "/admin/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// verifyQueryHMAC checks the hex HMAC Shopify attaches to redirect query strings.
func verifyQueryHMAC(secret string, query url.Values) bool {
	signature := strings.ToLower(query.Get("hmac"))
	if signature == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(signQuery(secret, query)))
}

func signQuery(secret string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(query[k], ","))
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewInstallState returns a random nonce for the OAuth state parameter.
func NewInstallState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
