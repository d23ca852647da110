package models

// Settings rows carry no column defaults: gorm skips zero-valued fields on
// insert, which would silently turn a stored false back into the default.
// Defaults live in the services.Load* fallbacks instead and only apply
// while no row exists.

// PointSettings is the single-row point earning policy.
type PointSettings struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	Enabled           bool    `json:"enabled"`
	PointsPerCurrency float64 `json:"pointsPerCurrency"` // points per currency unit paid
	PointsPerVisit    int     `json:"pointsPerVisit"`
	PointsPerReview   int     `json:"pointsPerReview"`
}

// NotificationSettings is the single-row toggle set for outbound pushes.
type NotificationSettings struct {
	ID                           uint `gorm:"primaryKey" json:"id"`
	AllNotifications             bool `json:"allNotifications"`
	DailyAppointmentNotification bool `json:"dailyAppointmentNotification"`
	ReminderNotification         bool `json:"reminderNotification"`
}

// AppSettings holds service-wide booking knobs. A zero CancelCutoffHours
// means no cutoff.
type AppSettings struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Timezone          string `gorm:"size:64" json:"timezone"`
	SlotStepMinutes   int    `json:"slotStepMinutes"`
	CancelCutoffHours int    `json:"cancelCutoffHours"`
}
