package auth

import (
	"net/url"
	"time"
)

// Config drives Shopify app authentication.
type Config struct {
	APIKey             string
	APISecret          string
	Scopes             []string
	AppURL             string
	TokenEncryptionKey string
	DevShopID          string
	SessionLeeway      time.Duration
}

// Shop is an installed merchant store. AccessToken holds the encrypted offline token.
type Shop struct {
	ID          string    `json:"id"`
	Domain      string    `json:"domain"`
	AccessToken string    `json:"-"`
	Scope       string    `json:"scope"`
	InstalledAt time.Time `json:"installedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Claims identify the shop behind an authenticated request.
type Claims struct {
	ShopID     string
	ShopDomain string
	UserID     string
	SessionID  string
	ExpiresAt  time.Time
}

// InstallCallback is the query Shopify sends back after the merchant approves the app.
type InstallCallback struct {
	Query url.Values
}

// InstallResult reports a completed installation.
type InstallResult struct {
	ShopID      string
	ShopDomain  string
	RedirectURL string
}
