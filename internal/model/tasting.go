package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bbmitchh/Logmypour2/internal/tasting"
)

// Layouts of the separately stored date and time columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Tasting is one in-store sampling event as stored in the `tastings` table.
// The bottle totals are denormalized from Products when the record is
// written so list queries do not need to decode the breakdown.
//
// Fields:
//
//	ID                  – primary key identifier.
//	UserID              – owning user; only they may edit or delete it.
//	DayOfWeek           – weekday name derived from Date at submission.
//	Date                – YYYY-MM-DD.
//	Time                – HH:MM.
//	StoreName           – free-text store name.
//	Products            – ordered per-product breakdown.
//	BottlesToSell       – sum of Products[i].ToSell.
//	BottlesSold         – sum of Products[i].Sold.
//	BottlesLeft         – sum of Products[i].Left.
//	TotalBottles        – unused, always 0.
//	PouredToSoldPercent – BottlesSold / TastingsPoured * 100, 0 with no pours.
//	TastingsPoured      – number of samples poured.
type Tasting struct {
	ID                  uint64   // tastings.id
	UserID              uint64   // tastings.user_id
	DayOfWeek           string   // tastings.day_of_week
	Date                string   // tastings.tasting_date
	Time                string   // tastings.tasting_time
	StoreName           string   // tastings.store_name
	Products            Products // tastings.products (JSON object)
	BottlesToSell       int      // tastings.bottles_to_sell
	BottlesSold         int      // tastings.bottles_sold
	BottlesLeft         int      // tastings.bottles_left
	TotalBottles        int      // tastings.total_bottles
	PouredToSoldPercent float64  // tastings.poured_to_sold_percent
	TastingsPoured      int      // tastings.tastings_poured
}

// Rollup summarizes the stored breakdown.
func (t *Tasting) Rollup() tasting.Rollup {
	return tasting.Summarize(t.Products, t.TastingsPoured)
}

// At parses the stored date and time in loc.
func (t *Tasting) At(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, t.Date+" "+t.Time, loc)
}

// Products is the ordered per-product breakdown of a tasting. It is
// persisted as a JSON object keyed by product name whose key order follows
// the slice order, e.g.
//
//	{"Pure Blue Vodka": {"to_sell": 5, "sold": 2, "left": 3}}
type Products []tasting.Line

type productCounts struct {
	ToSell int `json:"to_sell"`
	Sold   int `json:"sold"`
	Left   int `json:"left"`
}

// Find returns the line for name.
func (p Products) Find(name string) (tasting.Line, bool) {
	for _, l := range p {
		if l.Name == name {
			return l, true
		}
	}
	return tasting.Line{}, false
}

// MarshalJSON writes the breakdown as an object, preserving order.
func (p Products) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(l.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(productCounts{ToSell: l.ToSell, Sold: l.Sold, Left: l.Left})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object written by MarshalJSON, keeping key order.
func (p *Products) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("products: %w", err)
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("products: expected JSON object")
	}
	out := Products{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("products: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return errors.New("products: expected string key")
		}
		var c productCounts
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("products %q: %w", name, err)
		}
		out = append(out, tasting.Line{Name: name, ToSell: c.ToSell, Sold: c.Sold, Left: c.Left})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("products: %w", err)
	}
	*p = out
	return nil
}

// Value stores the breakdown as JSON text.
func (p Products) Value() (driver.Value, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the JSON text column. NULL and empty values yield an empty
// breakdown.
func (p *Products) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Products{}
		return nil
	case []byte:
		if len(bytes.TrimSpace(v)) == 0 {
			*p = Products{}
			return nil
		}
		return p.UnmarshalJSON(v)
	case string:
		if len(v) == 0 {
			*p = Products{}
			return nil
		}
		return p.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("products: unsupported column type %T", src)
	}
}
