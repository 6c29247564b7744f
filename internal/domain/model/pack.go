package model

import "fmt"

// Pack is a purchasable entitlement tier. Prices are stored in centavos to
// avoid float arithmetic on money.
type Pack struct {
	Type       string
	Label      string
	PriceCents int64
}

// PackCatalog is the ordered list of packs offered by the bot. Order is the
// display order of the purchase keyboard.
type PackCatalog []Pack

// DefaultPackCatalog mirrors the launch offer: basic R$0,50, premium R$1,20,
// vip R$2,50.
func DefaultPackCatalog() PackCatalog {
	return PackCatalog{
		{Type: "vip", Label: "💎 VIP", PriceCents: 250},
		{Type: "premium", Label: "⭐ Premium", PriceCents: 120},
		{Type: "basic", Label: "⚡ Básico", PriceCents: 50},
	}
}

// Find returns the pack for the given type, or false when the type is not in
// the catalog.
func (c PackCatalog) Find(packType string) (Pack, bool) {
	for _, p := range c {
		if p.Type == packType {
			return p, true
		}
	}
	return Pack{}, false
}

// PriceCents returns the price for a pack type; unknown types price at zero.
func (c PackCatalog) PriceCents(packType string) int64 {
	p, ok := c.Find(packType)
	if !ok {
		return 0
	}
	return p.PriceCents
}

// FormatBRL renders a centavos amount as "R$X,YY".
func FormatBRL(cents int64) string {
	return fmt.Sprintf("R$%d,%02d", cents/100, cents%100)
}
