package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the loyalty and contact record. Before a LINE account is
// linked the record is keyed by phone number only; LineUserID is set once
// by the merge flow and never reassigned.
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Phone      string    `gorm:"not null;index" json:"phone"`
	LineUserID *string   `gorm:"uniqueIndex" json:"lineUserId"`

	// Points is only ever mutated through the loyalty service transactions.
	Points int `gorm:"not null;default:0" json:"points"`

	LastAwardAmount        int        `gorm:"default:0" json:"lastAwardAmount"`
	LastAwardAt            *time.Time `json:"lastAwardAt"`
	LastAwardAppointmentID *uuid.UUID `gorm:"type:uuid" json:"lastAwardAppointmentId"`

	TotalVisits int `gorm:"default:0" json:"totalVisits"`

	Coupons []Coupon `gorm:"foreignKey:CustomerID" json:"coupons,omitempty"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
