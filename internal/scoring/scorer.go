package scoring

import (
	"fmt"
	"strings"

	"github.com/advaitm/stockpilot/internal/indicators"
)

// CategoryScore carries the raw points and the weighted contribution
// of one scoring category.
type CategoryScore struct {
	Raw      float64 `json:"raw"`
	Weighted float64 `json:"weighted"`
}

// Result is the composite score for one instrument
type Result struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Total  float64 `json:"total"`
	Label  string  `json:"label"`

	Trend       CategoryScore `json:"trend"`
	Volume      CategoryScore `json:"volume"`
	Momentum    CategoryScore `json:"momentum"`
	RSI         CategoryScore `json:"rsi"`
	PriceAction CategoryScore `json:"price_action"`

	Reasons []string `json:"reasons"`
}

// ReasonSummary joins the collected reasons for persistence
func (r *Result) ReasonSummary() string {
	return strings.Join(r.Reasons, "; ")
}

// Scorer turns an indicator bundle into a composite score.
// It is stateless and safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer returns a Scorer with the given weighting
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the weighted composite for one bundle. Missing
// indicators contribute nothing to their category. The total is
// clamped to [0, 100].
func (s *Scorer) Score(b *indicators.Bundle) *Result {
	r := &Result{Symbol: b.Symbol, Price: b.Price}

	r.Trend = s.weigh(s.scoreTrend(b, r), s.cfg.TrendCap, s.cfg.TrendWeight)
	r.Volume = s.weigh(s.scoreVolume(b, r), s.cfg.VolumeCap, s.cfg.VolumeWeight)
	r.Momentum = s.weigh(s.scoreMomentum(b, r), s.cfg.MomentumCap, s.cfg.MomentumWeight)
	r.RSI = s.weigh(s.scoreRSI(b, r), s.cfg.RSICap, s.cfg.RSIWeight)
	r.PriceAction = s.weigh(s.scorePriceAction(b, r), s.cfg.PriceCap, s.cfg.PriceWeight)

	total := r.Trend.Weighted + r.Volume.Weighted + r.Momentum.Weighted +
		r.RSI.Weighted + r.PriceAction.Weighted
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	r.Total = total
	r.Label = LabelForScore(total)

	return r
}

// weigh clamps raw points to [-limit, limit] and scales to the weight
func (s *Scorer) weigh(raw, limit, weight float64) CategoryScore {
	if limit == 0 {
		return CategoryScore{Raw: raw}
	}
	clamped := raw
	if clamped > limit {
		clamped = limit
	}
	if clamped < -limit {
		clamped = -limit
	}
	return CategoryScore{Raw: raw, Weighted: clamped / limit * weight}
}

func (s *Scorer) scoreTrend(b *indicators.Bundle, r *Result) float64 {
	var pts float64

	if ma := b.SMA50; ma != nil {
		if ma.Trend == indicators.TrendRising {
			pts += 8
			r.note("50W MA rising")
		} else {
			pts -= 5
		}
		if ma.PriceAbove {
			pts += 5
			r.note("price above 50W MA")
		} else {
			pts -= 3
		}
	}
	if ma := b.SMA200; ma != nil {
		if ma.Trend == indicators.TrendRising {
			pts += 7
			r.note("200W MA rising")
		} else {
			pts -= 3
		}
	}
	if b.SMA50 != nil && b.SMA200 != nil {
		if b.SMA50.Current > b.SMA200.Current {
			pts += 5
			r.note("50W MA above 200W MA")
		} else {
			pts -= 5
		}
	}

	return pts
}

func (s *Scorer) scoreVolume(b *indicators.Bundle, r *Result) float64 {
	var pts float64

	if obv := b.OBV; obv != nil {
		switch {
		case obv.ChangePct > 15:
			pts += 8
			r.note(fmt.Sprintf("OBV up %.0f%% over 6 months", obv.ChangePct))
		case obv.ChangePct > 5:
			pts += 5
		case obv.ChangePct < -15:
			pts -= 8
		case obv.ChangePct < -5:
			pts -= 5
		}
		if obv.HasMA {
			if obv.AboveMA {
				pts += 4
			} else {
				pts -= 4
			}
		}
	}
	if vpt := b.VPT; vpt != nil {
		switch {
		case vpt.ChangePct > 15:
			pts += 8
			r.note("VPT accumulation")
		case vpt.ChangePct > 5:
			pts += 5
		case vpt.ChangePct < -15:
			pts -= 8
		case vpt.ChangePct < -5:
			pts -= 5
		}
		if vpt.HasMA {
			if vpt.AboveMA {
				pts += 5
			} else {
				pts -= 5
			}
		}
	}

	return pts
}

func (s *Scorer) scoreMomentum(b *indicators.Bundle, r *Result) float64 {
	m := b.MACD
	if m == nil {
		return 0
	}

	var pts float64
	switch m.Crossover {
	case indicators.CrossoverBullish:
		pts += 12
		r.note("MACD bullish")
	case indicators.CrossoverBearish:
		pts -= 12
	}

	switch {
	case m.Histogram > 5:
		pts += 5
	case m.Histogram > 0:
		pts += 3
	case m.Histogram < -5:
		pts -= 5
	default:
		pts -= 3
	}

	if m.RecentBullish > m.RecentBearish {
		pts += 3
		r.note("recent MACD bullish crossover")
	} else if m.RecentBearish > m.RecentBullish {
		pts -= 3
	}

	return pts
}

func (s *Scorer) scoreRSI(b *indicators.Bundle, r *Result) float64 {
	rsi := b.RSI
	if rsi == nil {
		return 0
	}

	var pts float64
	switch {
	case rsi.Current < 30:
		pts += 8
		r.note(fmt.Sprintf("RSI oversold (%.0f)", rsi.Current))
	case rsi.Current <= 45:
		pts += 10
		r.note(fmt.Sprintf("RSI in buy zone (%.0f)", rsi.Current))
	case rsi.Current <= 65:
		pts += 5
	case rsi.Current <= 75:
		pts -= 3
	default:
		pts -= 8
		r.note(fmt.Sprintf("RSI overbought (%.0f)", rsi.Current))
	}

	if rsi.HasTrend {
		if rsi.Trend4W > 5 {
			pts += 2
		} else if rsi.Trend4W < -5 {
			pts -= 2
		}
	}

	return pts
}

func (s *Scorer) scorePriceAction(b *indicators.Bundle, r *Result) float64 {
	p := b.PriceAction
	if p == nil {
		return 0
	}

	var pts float64
	switch {
	case p.AvgWeeklyChange > 2:
		pts += 8
		r.note(fmt.Sprintf("avg weekly gain %.1f%%", p.AvgWeeklyChange))
	case p.AvgWeeklyChange > 0:
		pts += 4
	case p.AvgWeeklyChange < -2:
		pts -= 8
	case p.AvgWeeklyChange < 0:
		pts -= 4
	}

	if p.Volatility < 3 {
		pts += 3
		r.note("low volatility")
	} else if p.Volatility > 8 {
		pts -= 3
	}

	if p.HasVolumeTrend {
		if p.VolumeTrend > 20 {
			pts += 4
			r.note("volume expanding")
		} else if p.VolumeTrend < -20 {
			pts -= 4
		}
	}

	return pts
}

// note records a human-readable reason, capped to keep summaries short
func (r *Result) note(reason string) {
	if len(r.Reasons) < 6 {
		r.Reasons = append(r.Reasons, reason)
	}
}
