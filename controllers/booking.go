// controllers/booking.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/config"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/services"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateBookingInput defines the expected JSON structure for a customer booking
type CreateBookingInput struct {
	CustomerName  string      `json:"customerName" binding:"required"`
	CustomerPhone string      `json:"customerPhone" binding:"required"`
	ServiceID     uuid.UUID   `json:"serviceId" binding:"required"`
	AddonIDs      []uuid.UUID `json:"addonIds"`
	Date          string      `json:"date" binding:"required"`
	Time          string      `json:"time" binding:"required"`
}

// respondServiceError translates a typed service error into a single
// human-readable message for the customer.
func respondServiceError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, status, "The requested record was not found")
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, status, "You are not allowed to perform this action")
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondWithError(c, status, "This appointment can no longer be changed")
	case errors.Is(err, services.ErrSlotConflict):
		utils.RespondWithError(c, status, "The selected time slot is no longer available")
	case errors.Is(err, services.ErrInsufficientPoints):
		utils.RespondWithError(c, status, "Not enough points for this reward")
	case errors.Is(err, services.ErrAlreadyLinked):
		utils.RespondWithError(c, status, "This phone number is linked to another account")
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondWithError(c, status, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}

// CreateBooking books an appointment for the LIFF customer. The appointment
// starts in awaiting_confirmation; an admin assigns the provider later.
func CreateBooking(c *gin.Context) {
	lineUserID := c.GetString("lineUserId")

	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, err := appointmentSvc.Create(c.Request.Context(), services.BookingInput{
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		LineUserID:    &lineUserID,
		ServiceID:     input.ServiceID,
		AddonIDs:      input.AddonIDs,
		Date:          input.Date,
		Time:          input.Time,
		Origin:        models.OriginOnline,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, appt)
}

// MyBookings lists the customer's appointments, newest first.
func MyBookings(c *gin.Context) {
	lineUserID := c.GetString("lineUserId")

	var appointments []models.Appointment
	if err := config.DB.Preload("Addons").
		Where("line_user_id = ?", lineUserID).
		Order("date DESC, time DESC").
		Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// ConfirmMyAppointment is the customer acknowledgement of a confirmed slot.
func ConfirmMyAppointment(c *gin.Context) {
	lineUserID := c.GetString("lineUserId")

	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	appt, err := appointmentSvc.ConfirmByUser(c.Request.Context(), apptID, lineUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// CancelMyAppointment cancels the customer's own appointment.
func CancelMyAppointment(c *gin.Context) {
	lineUserID := c.GetString("lineUserId")

	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	appt, err := appointmentSvc.CancelByUser(c.Request.Context(), apptID, lineUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// GetAvailability is the advisory availability read for the booking UI.
func GetAvailability(c *gin.Context) {
	providerID, err := uuid.Parse(c.Query("providerId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid provider ID format")
		return
	}
	date := c.Query("date")
	slot := c.Query("time")
	if !utils.ValidDate(date) || !utils.ValidSlot(slot) {
		utils.RespondWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD and time HH:MM")
		return
	}

	available, err := services.IsProviderAvailable(config.DB, providerID, date, slot, uuid.Nil)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to check availability")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"providerId": providerID,
		"date":       date,
		"time":       slot,
		"available":  available,
	})
}
