package products

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

// CreateProductRequest is the admin payload for a new listing.
type CreateProductRequest struct {
	CategoryID        uuid.UUID        `json:"category_id" validate:"required"`
	Name              i18n.Text        `json:"name"`
	Description       i18n.Text        `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	DiscountPrice     *decimal.Decimal `json:"discount_price,omitempty"`
	StockQuantity     int              `json:"stock_quantity" validate:"gte=0"`
	IsPlant           bool             `json:"is_plant"`
	LatinName         *string          `json:"latin_name,omitempty" validate:"omitempty,max=200"`
	CareInstructions  i18n.Text        `json:"care_instructions"`
	Sunlight          i18n.Text        `json:"sunlight"`
	WateringFrequency i18n.Text        `json:"watering_frequency"`
	Size              i18n.Text        `json:"size"`
	Specifications    json.RawMessage  `json:"specifications,omitempty"`
}

// UpdateProductRequest is a partial listing update. Bilingual fields merge
// per language.
type UpdateProductRequest struct {
	CategoryID        *uuid.UUID       `json:"category_id,omitempty"`
	Name              *i18n.Text       `json:"name,omitempty"`
	Description       *i18n.Text       `json:"description,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	DiscountPrice     *decimal.Decimal `json:"discount_price,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	IsPlant           *bool            `json:"is_plant,omitempty"`
	LatinName         *string          `json:"latin_name,omitempty" validate:"omitempty,max=200"`
	CareInstructions  *i18n.Text       `json:"care_instructions,omitempty"`
	Sunlight          *i18n.Text       `json:"sunlight,omitempty"`
	WateringFrequency *i18n.Text       `json:"watering_frequency,omitempty"`
	Size              *i18n.Text       `json:"size,omitempty"`
	Specifications    json.RawMessage  `json:"specifications,omitempty"`
}

// ProductView is the localized listing.
type ProductView struct {
	ID                uuid.UUID        `json:"id"`
	CategoryID        uuid.UUID        `json:"category_id"`
	CategoryName      string           `json:"category_name,omitempty"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	DiscountPrice     *decimal.Decimal `json:"discount_price,omitempty"`
	EffectivePrice    decimal.Decimal  `json:"effective_price"`
	StockQuantity     int              `json:"stock_quantity"`
	InStock           bool             `json:"in_stock"`
	IsPlant           bool             `json:"is_plant"`
	LatinName         *string          `json:"latin_name,omitempty"`
	CareInstructions  string           `json:"care_instructions,omitempty"`
	Sunlight          string           `json:"sunlight,omitempty"`
	WateringFrequency string           `json:"watering_frequency,omitempty"`
	Size              string           `json:"size,omitempty"`
	Specifications    json.RawMessage  `json:"specifications,omitempty"`
	ImageURL          *string          `json:"image_url,omitempty"`
	AverageRating     float64          `json:"average_rating"`
	ReviewCount       int              `json:"review_count"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Localize projects a product into lang.
func Localize(p *models.Product, lang enums.Language) ProductView {
	view := ProductView{
		ID:                p.ID,
		CategoryID:        p.CategoryID,
		Name:              p.Name.In(lang),
		Description:       p.Description.In(lang),
		Price:             p.Price,
		DiscountPrice:     p.DiscountPrice,
		EffectivePrice:    p.EffectivePrice(),
		StockQuantity:     p.StockQuantity,
		InStock:           p.StockQuantity > 0,
		IsPlant:           p.IsPlant,
		LatinName:         p.LatinName,
		CareInstructions:  p.CareInstructions.In(lang),
		Sunlight:          p.Sunlight.In(lang),
		WateringFrequency: p.WateringFrequency.In(lang),
		Size:              p.Size.In(lang),
		ImageURL:          p.ImageURL,
		AverageRating:     p.AverageRating,
		ReviewCount:       p.ReviewCount,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.Category != nil {
		view.CategoryName = p.Category.Name.In(lang)
	}
	if len(p.Specifications) > 0 {
		view.Specifications = json.RawMessage(p.Specifications)
	}
	return view
}

// LocalizeAll projects a page of products.
func LocalizeAll(rows []models.Product, lang enums.Language) []ProductView {
	out := make([]ProductView, len(rows))
	for i := range rows {
		out[i] = Localize(&rows[i], lang)
	}
	return out
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
