package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

// Category groups marketplace products.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        i18n.Text `gorm:"embedded;embeddedPrefix:name_"`
	Description i18n.Text `gorm:"embedded;embeddedPrefix:description_"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Product is a marketplace listing. AverageRating and ReviewCount are derived
// from product_reviews and only written by the review aggregator.
type Product struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID        uuid.UUID        `gorm:"column:category_id;type:uuid;not null;index"`
	Category          *Category        `gorm:"foreignKey:CategoryID"`
	Name              i18n.Text        `gorm:"embedded;embeddedPrefix:name_"`
	Description       i18n.Text        `gorm:"embedded;embeddedPrefix:description_"`
	Price             decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPrice     *decimal.Decimal `gorm:"column:discount_price;type:numeric(12,2)"`
	StockQuantity     int              `gorm:"column:stock_quantity;not null;default:0"`
	IsPlant           bool             `gorm:"column:is_plant;not null;default:false"`
	LatinName         *string          `gorm:"column:latin_name"`
	CareInstructions  i18n.Text        `gorm:"embedded;embeddedPrefix:care_instructions_"`
	Sunlight          i18n.Text        `gorm:"embedded;embeddedPrefix:sunlight_"`
	WateringFrequency i18n.Text        `gorm:"embedded;embeddedPrefix:watering_frequency_"`
	Size              i18n.Text        `gorm:"embedded;embeddedPrefix:size_"`
	Specifications    datatypes.JSON   `gorm:"column:specifications"`
	ImageURL          *string          `gorm:"column:image_url"`
	AverageRating     float64          `gorm:"column:average_rating;not null;default:0"`
	ReviewCount       int              `gorm:"column:review_count;not null;default:0"`
	IsDeleted         bool             `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// EffectivePrice is the price charged at checkout: the discount price when it
// is set and lower than the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}

// ProductReview is one rating per (product, user) pair.
type ProductReview struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_product_reviews_product_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_product_reviews_product_user"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *ProductReview) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// Order is a customer purchase. TotalAmount is computed once at creation.
type Order struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status             enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	TotalAmount        decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ShippingAddress    i18n.Text         `gorm:"embedded;embeddedPrefix:shipping_address_"`
	ShippingCity       string            `gorm:"column:shipping_city;not null"`
	ShippingCountry    string            `gorm:"column:shipping_country;not null"`
	ShippingPostalCode *string           `gorm:"column:shipping_postal_code"`
	ContactPhone       string            `gorm:"column:contact_phone;not null"`
	Notes              *string           `gorm:"column:notes"`
	TrackingNumber     *string           `gorm:"column:tracking_number"`
	Items              []OrderItem       `gorm:"foreignKey:OrderID"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem snapshots the product price at order time and is never updated.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
