// services/scheduler.go
package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// StartScheduler registers the periodic jobs. The cron entries mirror the
// HTTP cron routes so deployments can pick either trigger.
func StartScheduler(digests *DigestService) *cron.Cron {
	c := cron.New()

	// Hourly, on the hour: the reminder window matches one slot exactly.
	c.AddFunc("0 * * * *", func() {
		if _, err := digests.SendAppointmentReminders(context.Background()); err != nil {
			log.Printf("Reminder job failed: %v", err)
		}
	})

	// Daily digest at 9 AM service time.
	c.AddFunc("0 9 * * *", func() {
		if _, err := digests.SendDailyNotifications(context.Background(), false); err != nil {
			log.Printf("Daily digest job failed: %v", err)
		}
	})

	c.Start()
	log.Println("Notification scheduler started")
	return c
}
