package aggregate

import (
	"sort"

	"trading-coach/internal/models"
)

// Each statistic is computed by a named function over a trade slice so the
// formulas stay independently testable.

// summarizeTrades computes the per-type summary for a slice of closed trades.
func summarizeTrades(trades []models.Trade) TypeSummary {
	s := TypeSummary{}
	if len(trades) == 0 {
		return s
	}

	var rTotal float64
	for i, t := range trades {
		pnl := t.PnL()
		s.Count++
		s.TotalPnL += pnl
		if pnl > 0 {
			s.Wins++
		} else {
			s.Losses++
		}
		if r, ok := t.RMultiple(); ok {
			rTotal += r
			s.RSamples++
		}
		if i == 0 || pnl > s.BestTrade {
			s.BestTrade = pnl
			s.BestTradeID = t.ID
		}
		if i == 0 || pnl < s.WorstTrade {
			s.WorstTrade = pnl
			s.WorstTradeID = t.ID
		}
	}

	s.WinRate = float64(s.Wins) / float64(s.Count)
	s.AvgPnL = s.TotalPnL / float64(s.Count)
	if s.RSamples > 0 {
		s.AvgRMultiple = rTotal / float64(s.RSamples)
	}
	return s
}

// summarizeByType groups closed trades by trade type and summarizes each
// group.
func summarizeByType(trades []models.Trade) map[models.TradeType]TypeSummary {
	groups := make(map[models.TradeType][]models.Trade)
	for _, t := range trades {
		groups[t.TradeType] = append(groups[t.TradeType], t)
	}

	out := make(map[models.TradeType]TypeSummary, len(groups))
	for tt, group := range groups {
		out[tt] = summarizeTrades(group)
	}
	return out
}

// computeStreaks walks closed trades in sequence order and records win/loss
// streak extremes. Zero-P&L trades break any running streak.
func computeStreaks(trades []models.Trade) StreakSummary {
	s := StreakSummary{}
	current := 0

	for _, t := range trades {
		pnl := t.PnL()
		switch {
		case pnl > 0:
			if current > 0 {
				current++
			} else {
				current = 1
			}
			if current > s.LongestWin {
				s.LongestWin = current
			}
		case pnl < 0:
			if current < 0 {
				current--
			} else {
				current = -1
			}
			if -current > s.LongestLoss {
				s.LongestLoss = -current
			}
		default:
			current = 0
		}
	}

	s.Current = current
	return s
}

// computeDrawdown computes the maximum peak-to-trough decline of cumulative
// P&L over trade-sequence order.
func computeDrawdown(trades []models.Trade) DrawdownSummary {
	d := DrawdownSummary{}
	var cumulative, peak float64
	trough := 0.0

	for _, t := range trades {
		cumulative += t.PnL()
		if cumulative > peak {
			peak = cumulative
			trough = cumulative
		}
		if cumulative < trough {
			trough = cumulative
		}
		if dd := peak - cumulative; dd > d.MaxDrawdown {
			d.MaxDrawdown = dd
			d.Peak = peak
			d.Trough = cumulative
		}
	}

	return d
}

// instrumentBreakdown summarizes closed trades per instrument.
func instrumentBreakdown(trades []models.Trade) map[string]InstrumentSummary {
	out := make(map[string]InstrumentSummary)
	for _, t := range trades {
		s := out[t.Instrument]
		s.Count++
		pnl := t.PnL()
		s.TotalPnL += pnl
		if pnl > 0 {
			s.Wins++
		}
		out[t.Instrument] = s
	}
	for k, s := range out {
		s.WinRate = float64(s.Wins) / float64(s.Count)
		out[k] = s
	}
	return out
}

// emotionalBreakdown summarizes closed trades per recorded emotional state.
// Trades without a recorded state are skipped.
func emotionalBreakdown(trades []models.Trade) map[string]StateSummary {
	out := make(map[string]StateSummary)
	for _, t := range trades {
		if t.EmotionalState == "" {
			continue
		}
		s := out[t.EmotionalState]
		s.Count++
		pnl := t.PnL()
		s.TotalPnL += pnl
		if pnl > 0 {
			s.Wins++
		}
		out[t.EmotionalState] = s
	}
	for k, s := range out {
		s.WinRate = float64(s.Wins) / float64(s.Count)
		s.AvgPnL = s.TotalPnL / float64(s.Count)
		out[k] = s
	}
	return out
}

// adherenceRollup rolls up plan adherence over trades that recorded it.
func adherenceRollup(trades []models.Trade) AdherenceSummary {
	s := AdherenceSummary{}
	var total float64
	for _, t := range trades {
		if t.PlanAdherence == nil {
			continue
		}
		a := *t.PlanAdherence
		if s.Samples == 0 {
			s.Min = a
			s.Max = a
		}
		if a < s.Min {
			s.Min = a
		}
		if a > s.Max {
			s.Max = a
		}
		total += a
		s.Samples++
	}
	if s.Samples > 0 {
		s.Average = total / float64(s.Samples)
	}
	return s
}

// dailySeries buckets closed-trade P&L by entry date, sorted ascending.
func dailySeries(trades []models.Trade) []DailyPnL {
	byDay := make(map[string]*DailyPnL)
	for _, t := range trades {
		day := t.EntryTime.UTC().Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &DailyPnL{Date: day}
			byDay[day] = p
		}
		p.PnL += t.PnL()
		p.Trades++
	}

	out := make([]DailyPnL, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// closedOnly filters to closed trades, preserving order.
func closedOnly(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Closed() {
			out = append(out, t)
		}
	}
	return out
}
