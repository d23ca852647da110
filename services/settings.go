// services/settings.go
package services

import (
	"errors"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"gorm.io/gorm"
)

// Settings rows are singletons; loaders fall back to defaults when the row
// has not been created yet.

func LoadPointSettings(db *gorm.DB) (models.PointSettings, error) {
	s := models.PointSettings{
		Enabled:           true,
		PointsPerCurrency: 0.01,
		PointsPerVisit:    1,
		PointsPerReview:   5,
	}
	err := db.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, nil
	}
	return s, err
}

func LoadNotificationSettings(db *gorm.DB) (models.NotificationSettings, error) {
	s := models.NotificationSettings{
		AllNotifications:             true,
		DailyAppointmentNotification: true,
		ReminderNotification:         true,
	}
	err := db.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, nil
	}
	return s, err
}

func LoadAppSettings(db *gorm.DB) (models.AppSettings, error) {
	s := models.AppSettings{
		Timezone:          "Asia/Bangkok",
		SlotStepMinutes:   60,
		CancelCutoffHours: 24,
	}
	err := db.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, nil
	}
	return s, err
}
