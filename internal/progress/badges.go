package progress

// Badge is a cosmetic achievement. The catalog is static; nothing unlocks it.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Badges returns the badge catalog.
func Badges() []Badge {
	return []Badge{
		{ID: "1", Name: "First Launch", Description: "Executed first simulated trade", Icon: "rocket_launch"},
		{ID: "2", Name: "Profit Maker", Description: "Closed a trade with >10% gain", Icon: "savings"},
		{ID: "3", Name: "Diversified", Description: "Hold 5 different sectors", Icon: "pie_chart"},
		{ID: "4", Name: "Diamond Hands", Description: "Held a position for 30+ days", Icon: "diamond"},
		{ID: "5", Name: "Millionaire", Description: "Reach $1M Portfolio Value", Icon: "account_balance"},
		{ID: "6", Name: "Oracle", Description: "10 Winning Trades in a Row", Icon: "visibility"},
	}
}
