// services/digest_service.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"
	"gorm.io/gorm"
)

// DigestService runs the cron-triggered batch notifications. Both jobs are
// safe to re-enter concurrently with request handlers: they only read
// appointments and stamp per-appointment markers.
type DigestService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
}

func NewDigestService(db *gorm.DB, dispatcher *Dispatcher) *DigestService {
	return &DigestService{db: db, dispatcher: dispatcher}
}

// ReminderReport aggregates one reminder run.
type ReminderReport struct {
	TotalAppointments int `json:"totalAppointments"`
	SuccessCount      int `json:"successCount"`
	FailureCount      int `json:"failureCount"`
	SkipCount         int `json:"skipCount"`
}

// SendAppointmentReminders notifies customers whose confirmed appointment
// starts one hour from now, rounded to the slot step. Each appointment is
// stamped before sending, so overlapping runs cannot remind twice.
func (s *DigestService) SendAppointmentReminders(ctx context.Context) (ReminderReport, error) {
	report := ReminderReport{}

	settings, err := LoadNotificationSettings(s.db)
	if err != nil {
		return report, err
	}
	if !settings.AllNotifications || !settings.ReminderNotification {
		log.Println("Reminder notifications disabled, skipping run")
		return report, nil
	}

	app, err := LoadAppSettings(s.db)
	if err != nil {
		return report, err
	}

	target := utils.RoundToSlot(time.Now().In(utils.ServiceLocation()).Add(time.Hour), app.SlotStepMinutes)
	date := target.Format(utils.DateLayout)
	slot := target.Format(utils.SlotLayout)

	var appointments []models.Appointment
	if err := s.db.Where("date = ? AND time = ? AND status = ? AND reminder_sent_at IS NULL",
		date, slot, models.StatusConfirmed).Find(&appointments).Error; err != nil {
		return report, err
	}
	report.TotalAppointments = len(appointments)

	for i := range appointments {
		appt := &appointments[i]

		// Claim the reminder stamp first; losing the claim means a
		// concurrent run already took this appointment.
		res := s.db.Model(&models.Appointment{}).
			Where("id = ? AND reminder_sent_at IS NULL", appt.ID).
			Update("reminder_sent_at", time.Now())
		if res.Error != nil {
			return report, res.Error
		}
		if res.RowsAffected == 0 {
			report.SkipCount++
			continue
		}

		summary := s.dispatcher.Dispatch(ctx, Event{Category: EventReminder, Appointment: appt},
			[]Recipient{customerRecipient(appt)})
		report.SuccessCount += summary.Sent
		report.FailureCount += summary.Failed
		report.SkipCount += summary.Skipped
	}

	log.Printf("Reminder run for %s %s: total=%d sent=%d failed=%d skipped=%d",
		date, slot, report.TotalAppointments, report.SuccessCount, report.FailureCount, report.SkipCount)
	return report, nil
}

// DailyReport aggregates one daily digest run.
type DailyReport struct {
	Enabled                 bool   `json:"-"`
	TotalAppointments       int    `json:"totalAppointments"`
	ValidStatusAppointments int    `json:"validStatusAppointments"`
	SentCount               int    `json:"sentCount"`
	FailureCount            int    `json:"failureCount"`
	SkipCount               int    `json:"skipCount"`
	Date                    string `json:"date"`
}

// SendDailyNotifications pushes one digest per customer holding a live
// appointment today. When mock is true sends are simulated without calling
// the messaging gateway.
func (s *DigestService) SendDailyNotifications(ctx context.Context, mock bool) (DailyReport, error) {
	today := time.Now().In(utils.ServiceLocation()).Format(utils.DateLayout)
	report := DailyReport{Date: today}

	settings, err := LoadNotificationSettings(s.db)
	if err != nil {
		return report, err
	}
	if !settings.AllNotifications || !settings.DailyAppointmentNotification {
		return report, nil
	}
	report.Enabled = true

	var appointments []models.Appointment
	if err := s.db.Where("date = ?", today).Find(&appointments).Error; err != nil {
		return report, err
	}
	report.TotalAppointments = len(appointments)

	dispatcher := s.dispatcher
	if mock {
		dispatcher = s.dispatcher.WithPusher(nopPusher{})
	}

	// One digest per customer, even when they hold several appointments today.
	notified := map[string]bool{}
	for i := range appointments {
		appt := &appointments[i]
		if appt.Status != models.StatusAwaitingConfirmation && appt.Status != models.StatusConfirmed {
			continue
		}
		report.ValidStatusAppointments++

		recipient := customerRecipient(appt)
		if recipient.LineUserID != "" {
			if notified[recipient.LineUserID] {
				continue
			}
			notified[recipient.LineUserID] = true
		}

		summary := dispatcher.Dispatch(ctx, Event{Category: EventDailyDigest, Appointment: appt},
			[]Recipient{recipient})
		report.SentCount += summary.Sent
		report.FailureCount += summary.Failed
		report.SkipCount += summary.Skipped
	}

	log.Printf("Daily digest for %s: total=%d eligible=%d sent=%d failed=%d skipped=%d mock=%v",
		today, report.TotalAppointments, report.ValidStatusAppointments,
		report.SentCount, report.FailureCount, report.SkipCount, mock)
	return report, nil
}

// nopPusher simulates successful sends for mock mode.
type nopPusher struct{}

func (nopPusher) Push(ctx context.Context, to string, msg Message) error {
	log.Printf("[MOCK] push to %s: %s", to, msg.AltText)
	return nil
}
