// services/availability.go
package services

import (
	"github.com/google/uuid"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"gorm.io/gorm"
)

// IsProviderAvailable reports whether the provider has no conflicting
// appointment at the given slot. Cancelled and completed appointments never
// block, nor do appointments without a provider. excludeAppointmentID skips
// the appointment being edited so it does not conflict with itself.
//
// This is an advisory read for display and pre-checks; the committing write
// still has to acquire the slot lock because two requests can both pass this
// check before either commits.
func IsProviderAvailable(db *gorm.DB, providerID uuid.UUID, date, slot string, excludeAppointmentID uuid.UUID) (bool, error) {
	var count int64
	q := db.Model(&models.Appointment{}).
		Where("provider_id = ? AND date = ? AND time = ?", providerID, date, slot).
		Where("status IN ?", models.BlockingStatuses)
	if excludeAppointmentID != uuid.Nil {
		q = q.Where("id <> ?", excludeAppointmentID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
