package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment status values as persisted. These strings are part of the
// wire contract with the LIFF frontend, do not rename.
const (
	StatusAwaitingConfirmation = "awaiting_confirmation"
	StatusConfirmed            = "confirmed"
	StatusInProgress           = "in_progress"
	StatusCompleted            = "completed"
	StatusCancelled            = "cancelled"
)

// BlockingStatuses are the statuses under which an appointment occupies its
// provider's slot.
var BlockingStatuses = []string{StatusAwaitingConfirmation, StatusConfirmed, StatusInProgress}

// Appointment origin values.
const (
	OriginOnline = "online" // booked by the customer through the LIFF app
	OriginManual = "manual" // entered by an admin
)

type Appointment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CaseNumber int       `gorm:"not null;default:0" json:"caseNumber"`

	CustomerName  string     `gorm:"not null" json:"customerName"`
	CustomerPhone string     `gorm:"not null;index" json:"customerPhone"`
	LineUserID    *string    `gorm:"index" json:"lineUserId"`
	CustomerAckAt *time.Time `json:"customerAckAt"`

	ServiceID   uuid.UUID          `gorm:"type:uuid;index;not null" json:"serviceId"`
	ServiceName string             `gorm:"not null" json:"serviceName"`
	Addons      []AppointmentAddon `gorm:"foreignKey:AppointmentID" json:"addons"`
	TotalPrice  float64            `gorm:"type:decimal(10,2);not null" json:"totalPrice"`

	ProviderID *uuid.UUID `gorm:"type:uuid;index" json:"providerId"`

	Date   string `gorm:"size:10;not null;index" json:"date"` // YYYY-MM-DD
	Time   string `gorm:"size:5;not null" json:"time"`        // HH:MM slot label
	Status string `gorm:"size:32;not null;default:'awaiting_confirmation';index" json:"status"`
	Origin string `gorm:"size:16;not null;default:'online'" json:"origin"`

	PaymentAmount float64    `gorm:"type:decimal(10,2);default:0.0" json:"paymentAmount"`
	PaymentStatus string     `gorm:"size:16;default:'unpaid'" json:"paymentStatus"`
	PaidAt        *time.Time `json:"paidAt"`

	ReminderSentAt  *time.Time `json:"reminderSentAt"`
	PointsAwardedAt *time.Time `json:"pointsAwardedAt"`

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Terminal reports whether no further status transition is legal.
func (a *Appointment) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// OwnedBy reports whether the given LINE user id belongs to this
// appointment's customer.
func (a *Appointment) OwnedBy(lineUserID string) bool {
	return a.LineUserID != nil && *a.LineUserID == lineUserID
}

type AppointmentAddon struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"appointmentId"`
	AddonID       uuid.UUID `gorm:"type:uuid;not null" json:"addonId"`
	Name          string    `gorm:"not null" json:"name"`
	Price         float64   `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (a *AppointmentAddon) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
