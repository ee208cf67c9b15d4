package pricegen

// Config holds the random-walk parameters for the price generator.
type Config struct {
	// SeedJitter spreads the first history price uniformly within
	// basePrice*(1±SeedJitter).
	SeedJitter float64
	// HistoryVolatility scales the per-bar move of generated history.
	HistoryVolatility float64
	// HistoryBias is subtracted from U(0,1) per bar; below 0.5 drifts upward.
	HistoryBias float64
	// WickFactor bounds how far high/low extend past the bar body.
	WickFactor float64
	// BaseVolume and VolumeSpread give bar volume in [Base, Base+Spread).
	BaseVolume   int64
	VolumeSpread int64
	// TickVolatility scales the per-tick move.
	TickVolatility float64
	// TickBias is subtracted from U(0,1) per tick.
	TickBias float64
	// TickVolumeSpread is the exclusive upper bound of volume added per tick.
	TickVolumeSpread int64
	// PriceFloor is the lowest price any move may produce.
	PriceFloor float64
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		SeedJitter:        0.05,
		HistoryVolatility: 0.015,
		HistoryBias:       0.45,
		WickFactor:        0.002,
		BaseVolume:        1000,
		VolumeSpread:      5000,
		TickVolatility:    0.0004,
		TickBias:          0.48,
		TickVolumeSpread:  10,
		PriceFloor:        0.01,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SeedJitter <= 0 {
		c.SeedJitter = def.SeedJitter
	}
	if c.HistoryVolatility <= 0 {
		c.HistoryVolatility = def.HistoryVolatility
	}
	if c.HistoryBias <= 0 {
		c.HistoryBias = def.HistoryBias
	}
	if c.WickFactor <= 0 {
		c.WickFactor = def.WickFactor
	}
	if c.BaseVolume <= 0 {
		c.BaseVolume = def.BaseVolume
	}
	if c.VolumeSpread <= 0 {
		c.VolumeSpread = def.VolumeSpread
	}
	if c.TickVolatility <= 0 {
		c.TickVolatility = def.TickVolatility
	}
	if c.TickBias <= 0 {
		c.TickBias = def.TickBias
	}
	if c.TickVolumeSpread <= 0 {
		c.TickVolumeSpread = def.TickVolumeSpread
	}
	if c.PriceFloor <= 0 {
		c.PriceFloor = def.PriceFloor
	}
	return c
}
