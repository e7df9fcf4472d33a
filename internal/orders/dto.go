package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

// ItemRequest is one line of a new order.
type ItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

// CreateOrderRequest carries the shipping details and line items.
type CreateOrderRequest struct {
	ShippingAddress    i18n.Text     `json:"shipping_address"`
	ShippingCity       string        `json:"shipping_city" validate:"required,max=100"`
	ShippingCountry    string        `json:"shipping_country" validate:"required,max=100"`
	ShippingPostalCode *string       `json:"shipping_postal_code,omitempty" validate:"omitempty,max=20"`
	ContactPhone       string        `json:"contact_phone" validate:"required,phone"`
	Notes              *string       `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Items              []ItemRequest `json:"items" validate:"dive"`
}

// UpdateStatusRequest is the admin status change.
type UpdateStatusRequest struct {
	Status         enums.OrderStatus `json:"status" validate:"required"`
	TrackingNumber *string           `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
}

// ListParams filters a user's orders.
type ListParams struct {
	pagination.Params
	Status *enums.OrderStatus
}

// OrderView is the localized order.
type OrderView struct {
	ID                 uuid.UUID         `json:"id"`
	UserID             uuid.UUID         `json:"user_id"`
	Status             enums.OrderStatus `json:"status"`
	TotalAmount        decimal.Decimal   `json:"total_amount"`
	ShippingAddress    string            `json:"shipping_address"`
	ShippingCity       string            `json:"shipping_city"`
	ShippingCountry    string            `json:"shipping_country"`
	ShippingPostalCode *string           `json:"shipping_postal_code,omitempty"`
	ContactPhone       string            `json:"contact_phone"`
	Notes              *string           `json:"notes,omitempty"`
	TrackingNumber     *string           `json:"tracking_number,omitempty"`
	Items              []ItemView        `json:"items"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ItemView is one order line.
type ItemView struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Localize projects an order into lang.
func Localize(o *models.Order, lang enums.Language) OrderView {
	items := make([]ItemView, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemView{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}
	return OrderView{
		ID:                 o.ID,
		UserID:             o.UserID,
		Status:             o.Status,
		TotalAmount:        o.TotalAmount,
		ShippingAddress:    o.ShippingAddress.In(lang),
		ShippingCity:       o.ShippingCity,
		ShippingCountry:    o.ShippingCountry,
		ShippingPostalCode: o.ShippingPostalCode,
		ContactPhone:       o.ContactPhone,
		Notes:              o.Notes,
		TrackingNumber:     o.TrackingNumber,
		Items:              items,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// LocalizeAll projects a page of orders.
func LocalizeAll(rows []models.Order, lang enums.Language) []OrderView {
	out := make([]OrderView, len(rows))
	for i := range rows {
		out[i] = Localize(&rows[i], lang)
	}
	return out
}
