// Package progress tracks experience points and the level they map to.
package progress

import "errors"

var ErrNegativeReward = errors.New("negative xp reward")

// XPPerLevel is the experience required to advance one level.
const XPPerLevel = 1000

// Rewards granted per activity.
const (
	BuyReward      int64 = 100
	SellReward     int64 = 150
	AutoExitReward int64 = 200
)

// Level returns floor(xp/XPPerLevel)+1.
func Level(xp int64) int64 {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// Award adds reward to xp and returns the new xp and level.
// XP never decreases, so negative rewards are rejected.
func Award(xp, reward int64) (int64, int64, error) {
	if reward < 0 {
		return xp, Level(xp), ErrNegativeReward
	}
	xp += reward
	return xp, Level(xp), nil
}

// Progress returns the xp earned inside the current level and the fraction
// of the way to the next one.
func Progress(xp int64) (int64, float64) {
	if xp < 0 {
		xp = 0
	}
	within := xp % XPPerLevel
	return within, float64(within) / XPPerLevel
}
