package auth

import "context"

// ShopRepository abstracts installed shop persistence.
type ShopRepository interface {
	UpsertShop(ctx context.Context, shop Shop) (Shop, error)
	GetShopByDomain(ctx context.Context, domain string) (Shop, bool, error)
	DeleteShop(ctx context.Context, shopID string) error
}

// ShopDataPurger removes every record a store keeps for one shop.
type ShopDataPurger interface {
	PurgeShop(ctx context.Context, shopID string) error
}

// Purgers lists the stores cleared when a shop is redacted.
type Purgers []ShopDataPurger
