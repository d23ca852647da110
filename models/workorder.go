package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workorder status values.
const (
	WorkorderOpen       = "open"
	WorkorderInProgress = "in_progress"
	WorkorderDone       = "done"
	WorkorderCancelled  = "cancelled"
)

// Workorder is the internal fulfillment record minted when an appointment
// is confirmed; it tracks the assigned provider and completion notes.
type Workorder struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"appointmentId"`
	ProviderID    uuid.UUID `gorm:"type:uuid;index;not null" json:"providerId"`
	Status        string    `gorm:"size:16;not null;default:'open'" json:"status"`
	Notes         string    `gorm:"type:text" json:"notes"`

	gorm.Model
}

func (w *Workorder) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}
