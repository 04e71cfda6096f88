// Package catalog enumerates the products a tasting form asks about and the
// form field names that carry each product's counts.
package catalog

import (
	"slices"
	"strings"
)

// Form fields for the single free-text product a user can add to a tasting.
const (
	OtherNameField   = "other_product_name"
	OtherToSellField = "other_to_sell"
	OtherSoldField   = "other_sold"
)

// Product is one catalog entry.
type Product struct {
	Name string
}

// Slug is the lower-cased, underscore-separated form of the name used as the
// field prefix.
func (p Product) Slug() string {
	return strings.ReplaceAll(strings.ToLower(p.Name), " ", "_")
}

// ToSellField is the form field holding the units on hand.
func (p Product) ToSellField() string { return p.Slug() + "_to_sell" }

// SoldField is the form field holding the units sold.
func (p Product) SoldField() string { return p.Slug() + "_sold" }

var products = []Product{
	{Name: "Pure Blue Vodka"},
	{Name: "Barrel House Rum"},
	{Name: "Oak Rum"},
	{Name: "Devil John Moonshine"},
	{Name: "Devil John Darkshine"},
	{Name: "Barrel House Select Bourbon"},
	{Name: "Barrel House Select Single Barrel Cask"},
	{Name: "Rockcastle Bourbon"},
	{Name: "Licking River Rye"},
}

// Products returns the catalog in display order.
func Products() []Product {
	return slices.Clone(products)
}

// Contains reports whether name is a catalog product.
func Contains(name string) bool {
	return slices.ContainsFunc(products, func(p Product) bool { return p.Name == name })
}
