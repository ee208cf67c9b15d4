package api

import "time"

// Config holds configuration for the HTTP API.
type Config struct {
	// AllowedOrigins feeds CORS and the WebSocket origin check. "*" allows any.
	AllowedOrigins []string
	// ActivityLimit caps GET /api/activity.
	ActivityLimit int
	// JournalLimit caps GET /api/journal.
	JournalLimit int

	// ClientBuffer is the per-connection outbound queue. Clients that fall
	// this far behind are disconnected.
	ClientBuffer int
	WriteWait    time.Duration
	PongWait     time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
		ActivityLimit:  50,
		JournalLimit:   100,
		ClientBuffer:   64,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = def.AllowedOrigins
	}
	if c.ActivityLimit <= 0 {
		c.ActivityLimit = def.ActivityLimit
	}
	if c.JournalLimit <= 0 {
		c.JournalLimit = def.JournalLimit
	}
	if c.ClientBuffer <= 0 {
		c.ClientBuffer = def.ClientBuffer
	}
	if c.WriteWait <= 0 {
		c.WriteWait = def.WriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = def.PongWait
	}
	return c
}

// pingPeriod must be shorter than PongWait.
func (c Config) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}
