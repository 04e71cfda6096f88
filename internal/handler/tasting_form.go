package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bbmitchh/Logmypour2/internal/catalog"
	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/service"
)

// formDateLayout is the value format of an HTML datetime-local input.
const formDateLayout = "2006-01-02T15:04"

// decodeTastingForm reads the tasting form. Counts that are missing, not
// integers or negative become 0. An unparsable date falls back to fallback.
// Every catalog product is included in catalog order, followed by the
// optional other product when it has a name.
func decodeTastingForm(c echo.Context, fallback time.Time, loc *time.Location) service.TastingInput {
	at, err := time.ParseInLocation(formDateLayout, strings.TrimSpace(c.FormValue("date")), loc)
	if err != nil {
		at = fallback
	}

	products := catalog.Products()
	in := service.TastingInput{
		StoreName: strings.TrimSpace(c.FormValue("store_name")),
		At:        at,
		Poured:    formCount(c, "tastings_poured"),
		Products:  make([]service.ProductCount, 0, len(products)+1),
	}
	for _, p := range products {
		in.Products = append(in.Products, service.ProductCount{
			Name:   p.Name,
			ToSell: formCount(c, p.ToSellField()),
			Sold:   formCount(c, p.SoldField()),
		})
	}
	if name := strings.TrimSpace(c.FormValue(catalog.OtherNameField)); name != "" {
		in.Products = append(in.Products, service.ProductCount{
			Name:   name,
			ToSell: formCount(c, catalog.OtherToSellField),
			Sold:   formCount(c, catalog.OtherSoldField),
		})
	}
	return in
}

func formCount(c echo.Context, field string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.FormValue(field)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

type formRow struct {
	Name        string
	ToSellField string
	SoldField   string
	ToSell      int
	Sold        int
}

// formView feeds the tasting_form template for both create and edit.
type formView struct {
	Heading     string
	Action      string
	SubmitLabel string
	StoreName   string
	DateValue   string
	Poured      int
	Rows        []formRow
	OtherName   string
	OtherToSell int
	OtherSold   int
}

func newFormView(now time.Time) formView {
	v := formView{
		Heading:     "Submit a tasting",
		Action:      "/submit_tasting",
		SubmitLabel: "Submit tasting",
		DateValue:   now.Format(formDateLayout),
	}
	for _, p := range catalog.Products() {
		v.Rows = append(v.Rows, formRow{Name: p.Name, ToSellField: p.ToSellField(), SoldField: p.SoldField()})
	}
	return v
}

// editFormView prefills the form from a stored tasting. Catalog products
// missing from the record show 0/0; the first non-catalog product fills the
// other fields.
func editFormView(t model.Tasting) formView {
	v := formView{
		Heading:     "Edit tasting",
		Action:      "/edit_tasting/" + strconv.FormatUint(t.ID, 10),
		SubmitLabel: "Save changes",
		StoreName:   t.StoreName,
		DateValue:   t.Date + "T" + t.Time,
		Poured:      t.TastingsPoured,
	}
	for _, p := range catalog.Products() {
		row := formRow{Name: p.Name, ToSellField: p.ToSellField(), SoldField: p.SoldField()}
		if l, ok := t.Products.Find(p.Name); ok {
			row.ToSell, row.Sold = l.ToSell, l.Sold
		}
		v.Rows = append(v.Rows, row)
	}
	for _, l := range t.Products {
		if !catalog.Contains(l.Name) {
			v.OtherName, v.OtherToSell, v.OtherSold = l.Name, l.ToSell, l.Sold
			break
		}
	}
	return v
}
