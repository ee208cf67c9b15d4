package activity

import "time"

// Kind classifies a notice.
type Kind string

const (
	KindTrade    Kind = "trade"
	KindAutoExit Kind = "auto_exit"
	KindRejected Kind = "rejected"
	KindReset    Kind = "reset"
	KindLevelUp  Kind = "level_up"
)

// Notice is a user-facing line in the activity feed.
type Notice struct {
	ID       int64     `json:"id"`
	Time     time.Time `json:"time"`
	Kind     Kind      `json:"kind"`
	Symbol   string    `json:"symbol,omitempty"` // empty for account-wide notices
	Message  string    `json:"message"`
	Severity int       `json:"severity"` // 0=normal, positive=more important
}
