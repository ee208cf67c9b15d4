package autoexit

import "github.com/zappabad/papertrade/internal/progress"

// Config holds configuration for the auto-exit monitor.
type Config struct {
	// XPReward is granted for every position closed by a threshold.
	XPReward int64
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{XPReward: progress.AutoExitReward}
}

func (c Config) withDefaults() Config {
	if c.XPReward <= 0 {
		c.XPReward = DefaultConfig().XPReward
	}
	return c
}
