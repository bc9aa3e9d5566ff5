package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
)

var testNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func TestValidateSessionToken(t *testing.T) {
	repo := newMemoryShopRepo()
	repo.shops["demo.myshopify.com"] = Shop{ID: "shop-uuid", Domain: "demo.myshopify.com", AccessToken: "enc"}
	svc := newTestService(repo)

	claims, err := svc.ValidateSessionToken(context.Background(), signSession(t, "test-secret", sessionClaimsFor("demo", "api-key", testNow.Add(time.Minute))))
	require.NoError(t, err)
	require.Equal(t, "shop-uuid", claims.ShopID)
	require.Equal(t, "demo.myshopify.com", claims.ShopDomain)
	require.Equal(t, "42", claims.UserID)
	require.Equal(t, "session-1", claims.SessionID)
}

func TestValidateSessionTokenRejections(t *testing.T) {
	repo := newMemoryShopRepo()
	repo.shops["demo.myshopify.com"] = Shop{ID: "demo", Domain: "demo.myshopify.com", AccessToken: "enc"}
	svc := newTestService(repo)

	mismatchedIssuer := sessionClaimsFor("demo", "api-key", testNow.Add(time.Minute))
	mismatchedIssuer.Issuer = "https://other.myshopify.com/admin"
	notShop := sessionClaimsFor("demo", "api-key", testNow.Add(time.Minute))
	notShop.Dest = "https://evil.example.com"
	notShop.Issuer = "https://evil.example.com/admin"

	tests := map[string]string{
		"empty":          "",
		"wrong audience": signSession(t, "test-secret", sessionClaimsFor("demo", "other-app", testNow.Add(time.Minute))),
		"wrong secret":   signSession(t, "nope", sessionClaimsFor("demo", "api-key", testNow.Add(time.Minute))),
		"expired":        signSession(t, "test-secret", sessionClaimsFor("demo", "api-key", testNow.Add(-time.Minute))),
		"issuer":         signSession(t, "test-secret", mismatchedIssuer),
		"not a shop":     signSession(t, "test-secret", notShop),
		"not installed":  signSession(t, "test-secret", sessionClaimsFor("ghost", "api-key", testNow.Add(time.Minute))),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateSessionToken(context.Background(), token)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken), "got %v", err)
		})
	}
}

func TestValidateSessionTokenLeeway(t *testing.T) {
	repo := newMemoryShopRepo()
	repo.shops["demo.myshopify.com"] = Shop{ID: "demo", Domain: "demo.myshopify.com", AccessToken: "enc"}
	svc := newTestService(repo)
	svc.cfg.SessionLeeway = 10 * time.Second

	_, err := svc.ValidateSessionToken(context.Background(), signSession(t, "test-secret", sessionClaimsFor("demo", "api-key", testNow.Add(-5*time.Second))))
	require.NoError(t, err)
}

func TestDevSession(t *testing.T) {
	svc := newTestService(newMemoryShopRepo())
	_, ok := svc.DevSession()
	require.False(t, ok)

	svc.cfg.DevShopID = "local-shop"
	claims, ok := svc.DevSession()
	require.True(t, ok)
	require.Equal(t, "local-shop", claims.ShopID)
}

func TestInstallURL(t *testing.T) {
	svc := newTestService(newMemoryShopRepo())

	raw, err := svc.InstallURL(context.Background(), "Demo.myshopify.com", "nonce")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "demo.myshopify.com", u.Host)
	require.Equal(t, "/admin/oauth/authorize", u.Path)
	require.Equal(t, "api-key", u.Query().Get("client_id"))
	require.Equal(t, "nonce", u.Query().Get("state"))
	require.Equal(t, "read_products,read_orders", u.Query().Get("scope"))
	require.Equal(t, "https://app.example.com/auth/callback", u.Query().Get("redirect_uri"))

	_, err = svc.InstallURL(context.Background(), "demo.example.com", "nonce")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	svc.cfg.APISecret = ""
	_, err = svc.InstallURL(context.Background(), "demo.myshopify.com", "nonce")
	require.True(t, apperrors.IsCode(err, apperrors.CodeAuthNotConfigured))
}

func TestCompleteInstall(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "auth-code" || r.PostForm.Get("client_id") != "api-key" {
			http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"shpat_secret","scope":"read_products,read_orders"}`))
	}))
	defer tokenServer.Close()

	repo := newMemoryShopRepo()
	svc := newTestService(repo)
	svc.endpointFor = func(string) oauth2.Endpoint {
		return oauth2.Endpoint{TokenURL: tokenServer.URL, AuthStyle: oauth2.AuthStyleInParams}
	}

	query := url.Values{
		"shop":      {"demo.myshopify.com"},
		"code":      {"auth-code"},
		"state":     {"nonce"},
		"host":      {"YWRtaW4uc2hvcGlmeS5jb20vc3RvcmUvZGVtbw"},
		"timestamp": {"1719835200"},
	}
	query.Set("hmac", signQuery("test-secret", query))

	result, err := svc.CompleteInstall(context.Background(), InstallCallback{Query: query})
	require.NoError(t, err)
	require.Equal(t, "demo", result.ShopID)
	require.Equal(t, "https://demo.myshopify.com/admin/apps/api-key?host=YWRtaW4uc2hvcGlmeS5jb20vc3RvcmUvZGVtbw", result.RedirectURL)

	stored := repo.shops["demo.myshopify.com"]
	require.Equal(t, "read_products,read_orders", stored.Scope)
	require.NotEqual(t, "shpat_secret", stored.AccessToken)
	plain, err := decryptToken("token-key", stored.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "shpat_secret", plain)

	query.Set("code", "tampered")
	_, err = svc.CompleteInstall(context.Background(), InstallCallback{Query: query})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidSignature))
}

func TestVerifyWebhook(t *testing.T) {
	svc := newTestService(newMemoryShopRepo())
	body := []byte(`{"shop_domain":"demo.myshopify.com"}`)
	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(body)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	require.True(t, svc.VerifyWebhook(body, signature))
	require.False(t, svc.VerifyWebhook([]byte(`{"shop_domain":"evil.myshopify.com"}`), signature))
	require.False(t, svc.VerifyWebhook(body, "not base64!"))
	require.False(t, svc.VerifyWebhook(body, ""))
}

func TestRedactShopRunsEveryPurger(t *testing.T) {
	repo := newMemoryShopRepo()
	repo.shops["demo.myshopify.com"] = Shop{ID: "shop-uuid", Domain: "demo.myshopify.com"}
	first := &recordingPurger{err: errors.New("boom")}
	second := &recordingPurger{}
	svc := newTestService(repo)
	svc.purgers = Purgers{first, second}

	err := svc.RedactShop(context.Background(), "demo.myshopify.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
	require.Equal(t, []string{"shop-uuid"}, first.shops)
	require.Equal(t, []string{"shop-uuid"}, second.shops)
	require.Empty(t, repo.shops)

	first.err = nil
	require.NoError(t, svc.RedactShop(context.Background(), "ghost.myshopify.com"))
	require.Equal(t, []string{"shop-uuid", "ghost"}, second.shops)
}

func TestTokenCryptoRoundTrip(t *testing.T) {
	enc, err := encryptToken("short passphrase", "shpat_123")
	require.NoError(t, err)
	dec, err := decryptToken("short passphrase", enc)
	require.NoError(t, err)
	require.Equal(t, "shpat_123", dec)

	_, err = decryptToken("other passphrase", enc)
	require.Error(t, err)
	_, err = encryptToken("", "shpat_123")
	require.Error(t, err)
}

func newTestService(repo ShopRepository) *service {
	return &service{
		cfg: Config{
			APIKey:             "api-key",
			APISecret:          "test-secret",
			Scopes:             []string{"read_products", "read_orders"},
			AppURL:             "https://app.example.com/",
			TokenEncryptionKey: "token-key",
		},
		repo:        repo,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         func() time.Time { return testNow },
		endpointFor: shopifyEndpoint,
	}
}

func sessionClaimsFor(shop, audience string, expires time.Time) sessionClaims {
	return sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://" + shop + ".myshopify.com/admin",
			Subject:   "42",
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(testNow.Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(testNow.Add(-time.Minute)),
		},
		Dest: "https://" + shop + ".myshopify.com",
		Sid:  "session-1",
	}
}

func signSession(t *testing.T, secret string, claims sessionClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

type memoryShopRepo struct {
	shops map[string]Shop
}

func newMemoryShopRepo() *memoryShopRepo {
	return &memoryShopRepo{shops: make(map[string]Shop)}
}

func (m *memoryShopRepo) UpsertShop(_ context.Context, shop Shop) (Shop, error) {
	m.shops[shop.Domain] = shop
	return shop, nil
}

func (m *memoryShopRepo) GetShopByDomain(_ context.Context, domain string) (Shop, bool, error) {
	shop, ok := m.shops[domain]
	return shop, ok, nil
}

func (m *memoryShopRepo) DeleteShop(_ context.Context, shopID string) error {
	for domain, shop := range m.shops {
		if shop.ID == shopID {
			delete(m.shops, domain)
		}
	}
	return nil
}

type recordingPurger struct {
	shops []string
	err   error
}

func (p *recordingPurger) PurgeShop(_ context.Context, shopID string) error {
	p.shops = append(p.shops, shopID)
	return p.err
}
