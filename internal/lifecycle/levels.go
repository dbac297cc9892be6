package lifecycle

import "strings"

// Levels are the derived target and stop-loss prices for a
// recommendation entry.
type Levels struct {
	Target float64 `json:"target"`
	Stop   float64 `json:"stop"`
}

// ComputeLevels derives price levels from the entry price and score.
// Buy-side labels target +15% on high conviction (score 70 and up)
// and +10% otherwise, with a fixed 10% stop. Non-buy labels invert.
func ComputeLevels(price, score float64, label string) Levels {
	if strings.Contains(label, "BUY") {
		mult := 1.10
		if score >= 70 {
			mult = 1.15
		}
		return Levels{Target: price * mult, Stop: price * 0.90}
	}
	return Levels{Target: price * 0.90, Stop: price * 1.10}
}
