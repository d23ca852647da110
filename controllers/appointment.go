// controllers/appointment.go
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
	"gorm.io/gorm"
)

// ManualAppointmentInput lets an admin enter a walk-in or phone booking,
// optionally assigning a provider which confirms the appointment on create.
type ManualAppointmentInput struct {
	CustomerName  string      `json:"customerName" binding:"required"`
	CustomerPhone string      `json:"customerPhone" binding:"required"`
	ServiceID     uuid.UUID   `json:"serviceId" binding:"required"`
	AddonIDs      []uuid.UUID `json:"addonIds"`
	Date          string      `json:"date" binding:"required"`
	Time          string      `json:"time" binding:"required"`
	ProviderID    *uuid.UUID  `json:"providerId"`
}

// UpdateAppointmentInput defines the admin patch prior to confirmation
type UpdateAppointmentInput struct {
	ServiceID     *uuid.UUID   `json:"serviceId"`
	AddonIDs      *[]uuid.UUID `json:"addonIds"`
	ProviderID    *uuid.UUID   `json:"providerId"`
	ClearProvider bool         `json:"clearProvider"`
	Date          *string      `json:"date"`
	Time          *string      `json:"time"`
}

type ConfirmAppointmentInput struct {
	ProviderID uuid.UUID `json:"providerId" binding:"required"`
}

type CompleteAppointmentInput struct {
	PaymentAmount float64 `json:"paymentAmount"`
}

// ListAppointments retrieves appointments, optionally filtered by date and status
func ListAppointments(c *gin.Context) {
	q := config.DB.Preload("Addons").Order("date DESC, case_number DESC")
	if date := c.Query("date"); date != "" {
		q = q.Where("date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := q.Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a specific appointment by ID
func GetAppointment(c *gin.Context) {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appt models.Appointment
	if err := config.DB.Preload("Addons").Where("id = ?", apptID).First(&appt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, appt)
}

// CreateManualAppointment enters a booking on behalf of a customer.
func CreateManualAppointment(c *gin.Context) {
	var input ManualAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, err := appointmentSvc.Create(c.Request.Context(), services.BookingInput{
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		ServiceID:     input.ServiceID,
		AddonIDs:      input.AddonIDs,
		Date:          input.Date,
		Time:          input.Time,
		Origin:        models.OriginManual,
		ProviderID:    input.ProviderID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, appt)
}

// UpdateAppointment edits an appointment prior to confirmation.
func UpdateAppointment(c *gin.Context) {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, err := appointmentSvc.UpdateByAdmin(c.Request.Context(), apptID, services.AdminPatch{
		ServiceID:     input.ServiceID,
		AddonIDs:      input.AddonIDs,
		ProviderID:    input.ProviderID,
		ClearProvider: input.ClearProvider,
		Date:          input.Date,
		Time:          input.Time,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// ConfirmAppointment assigns a provider and confirms the appointment.
func ConfirmAppointment(c *gin.Context) {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input ConfirmAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, err := appointmentSvc.ConfirmByAdmin(c.Request.Context(), apptID, input.ProviderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// StartAppointment marks service as started.
func StartAppointment(c *gin.Context) {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	appt, err := appointmentSvc.Start(c.Request.Context(), apptID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// CompleteAppointment finishes the service, records payment and awards points.
func CompleteAppointment(c *gin.Context) {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input CompleteAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, err := appointmentSvc.Complete(c.Request.Context(), apptID, input.PaymentAmount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// CancelAppointment cancels any non-terminal appointment on behalf of the salon.
func CancelAppointment(c *gin.Context) {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	appt, err := appointmentSvc.CancelByAdmin(c.Request.Context(), apptID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}
