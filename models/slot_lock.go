package models

import (
	"time"

	"github.com/google/uuid"
)

// SlotLock guards a (provider, date, time) slot with a database unique
// index. The advisory availability read is not atomic with the committing
// write, so every transition that commits a provider to a slot inserts a
// lock row in the same transaction; a duplicate-key error there means the
// slot was taken by a concurrent request.
//
// Lock rows are hard-deleted when the appointment leaves a blocking status.
type SlotLock struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProviderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_provider_slot,priority:1" json:"providerId"`
	Date          string    `gorm:"size:10;not null;uniqueIndex:idx_provider_slot,priority:2" json:"date"`
	Time          string    `gorm:"size:5;not null;uniqueIndex:idx_provider_slot,priority:3" json:"time"`
	AppointmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"appointmentId"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (SlotLock) TableName() string {
	return "slot_locks"
}
