package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// StockStatus is the catalog stock state of a product or variant.
type StockStatus string

const (
	StockInStock     StockStatus = "instock"
	StockOutOfStock  StockStatus = "outofstock"
	StockOnBackorder StockStatus = "onbackorder"
)

// Purchasable reports whether the status allows the item to be bought.
// Backordered items are still listed and sellable.
func (s StockStatus) Purchasable() bool {
	return s == StockInStock || s == StockOnBackorder
}

// IsValid checks if the stock status is one of the known values.
func (s StockStatus) IsValid() bool {
	switch s {
	case StockInStock, StockOutOfStock, StockOnBackorder:
		return true
	}
	return false
}

// ProductKind distinguishes simple products from products sold through variants.
type ProductKind string

const (
	KindSimple         ProductKind = "simple"
	KindVariantBearing ProductKind = "variant_bearing"
)

// IsValid checks if the product kind is one of the known values.
func (k ProductKind) IsValid() bool {
	return k == KindSimple || k == KindVariantBearing
}

// Product is a catalog product as owned by the host store platform.
// The engine only reads products; it never writes back to the catalog.
type Product struct {
	ID          int64
	Title       string
	Kind        ProductKind
	StockStatus StockStatus
	PriceCents  int64
	ImageURL    string
	Srcset      string
	URL         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attribute is one named dimension/value pair of a variant, e.g.
// {Name: "pa_fabric-color", Value: "light-blue"}. Order matters: the
// variant-selecting URL lists attributes in their stored position order.
type Attribute struct {
	Name  string
	Value string
}

// Variant is a purchasable configuration of a variant-bearing product.
type Variant struct {
	ID          int64
	ParentID    int64
	Position    int
	StockStatus StockStatus
	PriceCents  int64
	ImageURL    string // empty means fall back to the parent product image
	Srcset      string
	Attributes  []Attribute
}

// SelectingURL builds the variant-selecting URL for this variant by
// appending attribute query parameters to the parent product URL.
func (v *Variant) SelectingURL(productURL string) string {
	if len(v.Attributes) == 0 {
		return productURL
	}
	var sb strings.Builder
	sb.WriteString(productURL)
	sep := "?"
	if strings.Contains(productURL, "?") {
		sep = "&"
	}
	for _, attr := range v.Attributes {
		sb.WriteString(sep)
		sb.WriteString("attribute_")
		sb.WriteString(url.QueryEscape(attr.Name))
		sb.WriteString("=")
		sb.WriteString(url.QueryEscape(attr.Value))
		sep = "&"
	}
	return sb.String()
}

// AttributeTerm is a stored attribute value within a taxonomy, e.g.
// taxonomy "pa_fabric-color", name "Light Blue", slug "light-blue".
type AttributeTerm struct {
	ID       int64
	Taxonomy string
	Name     string
	Slug     string
}

// FormatPriceHTML renders a price in cents as the price fragment consumed
// by the storefront UI.
func FormatPriceHTML(cents int64, currencyPrefix string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf(`<span class="price">%s%s%d.%02d</span>`, sign, currencyPrefix, cents/100, cents%100)
}
