// Package product defines the catalog's core entity.
package product

import "github.com/shopspring/decimal"

// Product is the canonical in-memory representation of a catalog item.
// A Product is built by decoding a remote or cached representation, is never
// mutated afterwards, and is discarded when superseded by a newer fetch.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}
