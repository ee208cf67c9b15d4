package market

// DefaultCatalog returns the mock instruments a fresh session trades.
// History is left empty; callers generate it for the selected range.
func DefaultCatalog() []Instrument {
	return []Instrument{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 178.35, Change: 1.25, ChangePercent: 0.71, Volume: "58.4M", MarketCap: "2.75T"},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 460.15, Change: 15.40, ChangePercent: 3.45, Volume: "42.1M", MarketCap: "1.14T"},
		{Symbol: "TSLA", Name: "Tesla, Inc.", Price: 245.30, Change: -5.12, ChangePercent: -2.10, Volume: "112.5M", MarketCap: "780.2B"},
		{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 334.10, Change: 0.85, ChangePercent: 0.25, Volume: "22.8M", MarketCap: "2.48T"},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 135.20, Change: 0.55, ChangePercent: 0.41, Volume: "19.4M", MarketCap: "1.69T"},
		{Symbol: "AMD", Name: "Advanced Micro Devices", Price: 105.20, Change: 1.95, ChangePercent: 1.85, Volume: "45.7M", MarketCap: "169.8B"},
		{Symbol: "AMZN", Name: "Amazon.com, Inc.", Price: 128.90, Change: -0.30, ChangePercent: -0.23, Volume: "38.2M", MarketCap: "1.33T"},
	}
}
