package util

import (
	"regexp"
	"strings"
)

const shopDomainSuffix = ".myshopify.com"

var (
	productIDPattern  = regexp.MustCompile(`^gid://shopify/Product/\d+$`)
	shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)
)

// ValidProductID reports whether id is a Shopify product GID.
func ValidProductID(id string) bool {
	return productIDPattern.MatchString(id)
}

// ValidShopDomain reports whether domain is a bare *.myshopify.com host.
func ValidShopDomain(domain string) bool {
	return shopDomainPattern.MatchString(domain)
}

// ShopIDFromDomain derives the internal shop key from a myshopify domain.
func ShopIDFromDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), shopDomainSuffix)
}
