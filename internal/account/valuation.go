package account

import "github.com/shopspring/decimal"

// Valuation summarizes an account at current prices.
type Valuation struct {
	MarketValue         decimal.Decimal `json:"market_value"`
	Cash                decimal.Decimal `json:"cash"`
	TotalValue          decimal.Decimal `json:"total_value"`
	LifetimeGain        decimal.Decimal `json:"lifetime_gain"`
	LifetimeGainPercent float64         `json:"lifetime_gain_percent"`
}

// Value marks every position to prices and compares the total against the
// initial deposit. A position whose symbol has no price is valued at cost.
func Value(a Account, prices map[string]float64, initial decimal.Decimal) Valuation {
	market := decimal.Zero
	for _, p := range a.Positions {
		price := p.AvgCost
		if px, ok := prices[p.Symbol]; ok {
			price = decimal.NewFromFloat(px)
		}
		market = market.Add(price.Mul(decimal.NewFromInt(p.Shares)))
	}

	total := market.Add(a.Balance)
	gain := total.Sub(initial)

	var pct float64
	if !initial.IsZero() {
		pct = gain.Div(initial).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return Valuation{
		MarketValue:         market,
		Cash:                a.Balance,
		TotalValue:          total,
		LifetimeGain:        gain,
		LifetimeGainPercent: pct,
	}
}

// MaxBuy returns how many whole shares balance can buy at price.
func MaxBuy(balance decimal.Decimal, price float64) int64 {
	if price <= 0 || !balance.IsPositive() {
		return 0
	}
	return balance.Div(decimal.NewFromFloat(price)).Floor().IntPart()
}

// MaxSell returns the shares held in symbol.
func MaxSell(a Account, symbol string) int64 {
	if p, ok := a.Position(symbol); ok {
		return p.Shares
	}
	return 0
}
