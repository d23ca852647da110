package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discount types for rewards and the coupons minted from them.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Reward struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Description    string    `json:"description"`
	PointsRequired int       `gorm:"not null" json:"pointsRequired"`
	DiscountType   string    `gorm:"size:16;not null" json:"discountType"`
	DiscountValue  float64   `gorm:"type:decimal(10,2);not null" json:"discountValue"`
	IsActive       bool      `gorm:"default:true" json:"isActive"`

	gorm.Model
}

func (r *Reward) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// Coupon is a customer-owned redemption receipt. The reward fields are
// denormalized so a later catalog edit does not change an issued coupon.
type Coupon struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Code          string     `gorm:"size:12;uniqueIndex;not null" json:"code"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	RewardID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"rewardId"`
	Name          string     `gorm:"not null" json:"name"`
	Description   string     `json:"description"`
	DiscountType  string     `gorm:"size:16;not null" json:"discountType"`
	DiscountValue float64    `gorm:"type:decimal(10,2);not null" json:"discountValue"`
	RedeemedAt    time.Time  `gorm:"not null" json:"redeemedAt"`
	Used          bool       `gorm:"not null;default:false" json:"used"`
	ExpiresAt     *time.Time `json:"expiresAt"`

	gorm.Model
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
