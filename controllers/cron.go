// controllers/cron.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SendReminders is the hourly cron trigger for appointment reminders.
// GET /api/cron/send-reminders
func SendReminders(c *gin.Context) {
	report, err := digestSvc.SendAppointmentReminders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"totalAppointments": report.TotalAppointments,
		"successCount":      report.SuccessCount,
		"failureCount":      report.FailureCount,
	})
}

// SendDailyNotifications is the daily digest cron trigger.
// GET /api/cron/send-daily-notifications
func SendDailyNotifications(c *gin.Context) {
	runDailyNotifications(c, false)
}

type ManualDailyInput struct {
	Mock bool `json:"mock"`
}

// SendDailyNotificationsManual triggers the digest by hand; mock mode
// simulates sends without calling the messaging gateway.
// POST /api/send-daily-notifications
func SendDailyNotificationsManual(c *gin.Context) {
	var input ManualDailyInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
		return
	}
	runDailyNotifications(c, input.Mock)
}

func runDailyNotifications(c *gin.Context, mock bool) {
	report, err := digestSvc.SendDailyNotifications(c.Request.Context(), mock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	message := "Daily notifications sent"
	if !report.Enabled {
		message = "Daily notifications are disabled in settings"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    report,
	})
}
