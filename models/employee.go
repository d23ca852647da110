package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is a service provider (beautician) who fulfills appointments.
type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Phone      string    `json:"phone"`
	LineUserID *string   `gorm:"uniqueIndex" json:"lineUserId"`
	Skills     string    `json:"skills"`
	IsActive   bool      `gorm:"default:true" json:"isActive"`

	gorm.Model
}

func (e *Employee) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
