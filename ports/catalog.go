package ports

import (
	"context"

	"poissonkit/domain/catalog"
)

// CatalogSource loads an event catalog from an external data product
// (spreadsheet, CSV export). Loading normalizes timestamps into
// non-decreasing order; windowing stays the caller's responsibility.
type CatalogSource interface {
	Load(ctx context.Context, ref CatalogRef) (catalog.Catalog, error)
}

// CatalogRef names a catalog inside a data source.
type CatalogRef struct {
	Path       string // file path (.xlsx or .csv)
	TimeColumn string // header of the timestamp column
}
