package scoring

// Config holds category weights and raw-point caps. Raw category
// points are clamped to [-cap, cap] and then scaled to the weight,
// so weights always sum to the maximum achievable total.
type Config struct {
	TrendWeight    float64
	VolumeWeight   float64
	MomentumWeight float64
	RSIWeight      float64
	PriceWeight    float64

	TrendCap    float64
	VolumeCap   float64
	MomentumCap float64
	RSICap      float64
	PriceCap    float64
}

// DefaultConfig returns the production weighting: trend and volume
// carry 25 points each, momentum 20, RSI and price action 15 each.
func DefaultConfig() Config {
	return Config{
		TrendWeight:    25,
		VolumeWeight:   25,
		MomentumWeight: 20,
		RSIWeight:      15,
		PriceWeight:    15,

		TrendCap:    25,
		VolumeCap:   25,
		MomentumCap: 20,
		RSICap:      15,
		PriceCap:    15,
	}
}

// MaxTotal returns the highest achievable composite score
func (c Config) MaxTotal() float64 {
	return c.TrendWeight + c.VolumeWeight + c.MomentumWeight + c.RSIWeight + c.PriceWeight
}

// Label thresholds for the display recommendation
const (
	LabelStrongBuy = "STRONG BUY"
	LabelBuy       = "BUY"
	LabelWeakBuy   = "WEAK BUY"
	LabelHold      = "HOLD"
	LabelSell      = "SELL"
)

// LabelForScore maps a composite score to its display label. The
// label is reporting metadata only; lifecycle decisions run on the
// tier thresholds in the contracts package.
func LabelForScore(score float64) string {
	switch {
	case score >= 75:
		return LabelStrongBuy
	case score >= 60:
		return LabelBuy
	case score >= 40:
		return LabelWeakBuy
	case score >= 20:
		return LabelHold
	default:
		return LabelSell
	}
}
