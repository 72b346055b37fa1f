// internal/models/shop.go
package models

// Shop item identifiers accepted by the buy command.
const (
	ItemHeart      = "heart"
	ItemMultiplier = "multiplier"
)

// Price and cap bounds enforced at room creation.
const (
	minItemPrice = 1
	maxItemPrice = 999
	maxItemOwned = 9
)

// ShopConfig is the per-room price/cap table for the two catalog items.
// It is fixed at room creation and never changes afterwards.
type ShopConfig struct {
	HeartPrice      int `json:"heartPrice"`
	HeartMax        int `json:"heartMax"`
	MultiplierPrice int `json:"multiplierPrice"`
	MultiplierMax   int `json:"multiplierMax"`
}

// DefaultShopConfig returns the catalog used when a room is created without
// explicit shop settings.
func DefaultShopConfig() ShopConfig {
	return ShopConfig{
		HeartPrice:      15,
		HeartMax:        3,
		MultiplierPrice: 25,
		MultiplierMax:   2,
	}
}

// Normalize clamps the config into the allowed bounds, falling back to the
// defaults for unset (zero) prices.
func (c *ShopConfig) Normalize() {
	def := DefaultShopConfig()
	if c.HeartPrice <= 0 {
		c.HeartPrice = def.HeartPrice
	}
	if c.MultiplierPrice <= 0 {
		c.MultiplierPrice = def.MultiplierPrice
	}
	c.HeartPrice = clamp(c.HeartPrice, minItemPrice, maxItemPrice)
	c.MultiplierPrice = clamp(c.MultiplierPrice, minItemPrice, maxItemPrice)
	c.HeartMax = clamp(c.HeartMax, 0, maxItemOwned)
	c.MultiplierMax = clamp(c.MultiplierMax, 0, maxItemOwned)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
