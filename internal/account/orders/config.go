package orders

import "github.com/zappabad/papertrade/internal/progress"

// Config holds the order engine's rewards and market-impact parameters.
type Config struct {
	// BuyXP and SellXP are granted on every filled order.
	BuyXP  int64
	SellXP int64
	// ImpactFactor and ImpactDivisor give the price nudge of a fill:
	// price*ImpactFactor*(shares/ImpactDivisor).
	ImpactFactor  float64
	ImpactDivisor float64
	// PriceFloor is the lowest price market impact may produce.
	PriceFloor float64
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		BuyXP:         progress.BuyReward,
		SellXP:        progress.SellReward,
		ImpactFactor:  0.0002,
		ImpactDivisor: 5,
		PriceFloor:    0.01,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BuyXP <= 0 {
		c.BuyXP = def.BuyXP
	}
	if c.SellXP <= 0 {
		c.SellXP = def.SellXP
	}
	if c.ImpactFactor <= 0 {
		c.ImpactFactor = def.ImpactFactor
	}
	if c.ImpactDivisor <= 0 {
		c.ImpactDivisor = def.ImpactDivisor
	}
	if c.PriceFloor <= 0 {
		c.PriceFloor = def.PriceFloor
	}
	return c
}
