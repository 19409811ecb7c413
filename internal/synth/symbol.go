package synth

// Symbol describes one synthetic security's identity and price behavior,
// adapted from the teacher's fixed 30-symbol universe.
type Symbol struct {
	Locate    uint16
	Ticker    string
	BasePrice float64 // dollars
	TickSize  float64 // dollars
}

// Universe is the fixed set of synthetic securities cmd/gen replays
// order flow over.
var Universe = []Symbol{
	{1, "AAPL", 190.00, 0.01},
	{2, "MSFT", 410.00, 0.01},
	{3, "GOOGL", 165.00, 0.01},
	{4, "AMZN", 178.00, 0.01},
	{5, "NVDA", 900.00, 0.01},
	{6, "META", 470.00, 0.01},
	{7, "TSLA", 220.00, 0.01},
	{8, "AMD", 165.00, 0.01},
	{9, "NFLX", 610.00, 0.01},
	{10, "IBM", 175.00, 0.01},
	{11, "JPM", 195.00, 0.01},
	{12, "BAC", 38.00, 0.01},
	{13, "XOM", 115.00, 0.01},
	{14, "CVX", 158.00, 0.01},
	{15, "PFE", 27.00, 0.01},
	{16, "JNJ", 152.00, 0.01},
	{17, "KO", 60.00, 0.01},
	{18, "PEP", 172.00, 0.01},
	{19, "WMT", 68.00, 0.01},
	{20, "SPY", 520.00, 0.01},
}

// ByLocate looks up a Symbol by its stock locate code.
func ByLocate(locate uint16) (Symbol, bool) {
	for _, s := range Universe {
		if s.Locate == locate {
			return s, true
		}
	}
	return Symbol{}, false
}
