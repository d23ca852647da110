// controllers/settings.go
package controllers

import (
	"net/http"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/config"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/services"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type UpdatePointSettingsInput struct {
	Enabled           *bool    `json:"enabled"`
	PointsPerCurrency *float64 `json:"pointsPerCurrency" binding:"omitempty,gte=0"`
	PointsPerVisit    *int     `json:"pointsPerVisit" binding:"omitempty,gte=0"`
	PointsPerReview   *int     `json:"pointsPerReview" binding:"omitempty,gte=0"`
}

type UpdateNotificationSettingsInput struct {
	AllNotifications             *bool `json:"allNotifications"`
	DailyAppointmentNotification *bool `json:"dailyAppointmentNotification"`
	ReminderNotification         *bool `json:"reminderNotification"`
}

// GetSettings returns the point and notification policies together.
func GetSettings(c *gin.Context) {
	points, err := services.LoadPointSettings(config.DB)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	notifications, err := services.LoadNotificationSettings(config.DB)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points":        points,
		"notifications": notifications,
	})
}

// UpdatePointSettings upserts the point-earning policy row.
func UpdatePointSettings(c *gin.Context) {
	var input UpdatePointSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	settings, err := services.LoadPointSettings(config.DB)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	settings.ID = 1

	if input.Enabled != nil {
		settings.Enabled = *input.Enabled
	}
	if input.PointsPerCurrency != nil {
		settings.PointsPerCurrency = *input.PointsPerCurrency
	}
	if input.PointsPerVisit != nil {
		settings.PointsPerVisit = *input.PointsPerVisit
	}
	if input.PointsPerReview != nil {
		settings.PointsPerReview = *input.PointsPerReview
	}

	if err := config.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateNotificationSettings upserts the notification toggle row.
func UpdateNotificationSettings(c *gin.Context) {
	var input UpdateNotificationSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	settings, err := services.LoadNotificationSettings(config.DB)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	settings.ID = 1

	if input.AllNotifications != nil {
		settings.AllNotifications = *input.AllNotifications
	}
	if input.DailyAppointmentNotification != nil {
		settings.DailyAppointmentNotification = *input.DailyAppointmentNotification
	}
	if input.ReminderNotification != nil {
		settings.ReminderNotification = *input.ReminderNotification
	}

	if err := config.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// GetNotifications lists the admin inbox, unread first.
func GetNotifications(c *gin.Context) {
	var notifications []models.Notification
	if err := config.DB.Order("read ASC, created_at DESC").Limit(100).
		Find(&notifications).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead flips the read flag on an inbox entry.
func MarkNotificationRead(c *gin.Context) {
	result := config.DB.Model(&models.Notification{}).
		Where("id = ?", c.Param("id")).
		Update("read", true)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
