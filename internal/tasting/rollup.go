// Package tasting holds the arithmetic behind tasting summaries: per-product
// leftovers, per-tasting totals and the cumulative figures across a user's
// history. Everything here is pure and safe to call with zero pours.
package tasting

// Line is one product's figures within a single tasting.
type Line struct {
	Name   string
	ToSell int
	Sold   int
	Left   int
}

// NewLine builds a Line and derives Left. Selling more than was on hand
// clamps Left to zero rather than going negative.
func NewLine(name string, toSell, sold int) Line {
	return Line{
		Name:   name,
		ToSell: toSell,
		Sold:   sold,
		Left:   max(toSell-sold, 0),
	}
}

// Rollup is the summary of one tasting.
type Rollup struct {
	Lines      []Line
	ToSell     int
	Sold       int
	Left       int
	Poured     int
	Conversion float64
}

// Summarize totals the lines of one tasting. Lines are taken as stored; Left
// is not recomputed.
func Summarize(lines []Line, poured int) Rollup {
	r := Rollup{Lines: lines, Poured: poured}
	for _, l := range lines {
		r.ToSell += l.ToSell
		r.Sold += l.Sold
		r.Left += l.Left
	}
	r.Conversion = ConversionPercent(r.Sold, poured)
	return r
}

// Cumulative is the running total across many tastings.
type Cumulative struct {
	Tastings   int
	ToSell     int
	Sold       int
	Left       int
	Poured     int
	Conversion float64
}

// Accumulate folds per-tasting rollups into a Cumulative. The conversion is
// recomputed from the summed counts, not averaged.
func Accumulate(rollups []Rollup) Cumulative {
	var c Cumulative
	for _, r := range rollups {
		c.Tastings++
		c.ToSell += r.ToSell
		c.Sold += r.Sold
		c.Left += r.Left
		c.Poured += r.Poured
	}
	c.Conversion = ConversionPercent(c.Sold, c.Poured)
	return c
}

// ConversionPercent returns sold/poured*100, or 0 when nothing was poured.
func ConversionPercent(sold, poured int) float64 {
	if poured <= 0 {
		return 0
	}
	return float64(sold) / float64(poured) * 100
}
