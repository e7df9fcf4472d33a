package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// ListFilters are the browse endpoint filters. Nil fields do not filter.
type ListFilters struct {
	CategoryID    *uuid.UUID
	IsPlant       *bool
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	AvailableOnly bool
}

// ListParams combines filters with cursor pagination.
type ListParams struct {
	pagination.Params
	Filters ListFilters
}
