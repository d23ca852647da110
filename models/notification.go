package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an entry in the admin inbox, independent of outbound
// LINE pushes.
type Notification struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Category string    `gorm:"size:32;not null" json:"category"`
	Message  string    `gorm:"type:text;not null" json:"message"`
	Read     bool      `gorm:"not null;default:false" json:"read"`

	gorm.Model
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}

// DeliveryLog records one outbound push attempt per recipient.
type DeliveryLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Category     string    `gorm:"size:32;not null" json:"category"`
	Recipient    string    `gorm:"size:64" json:"recipient"` // LINE user id, empty when skipped
	Status       string    `gorm:"size:16;not null" json:"status"` // sent, failed, skipped
	ErrorMessage string    `gorm:"type:text" json:"errorMessage"`
	SentAt       time.Time `json:"sentAt"`
}
