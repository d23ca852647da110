// services/appointment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"
	"gorm.io/gorm"
)

// AppointmentService owns the appointment status field. Every legal
// transition goes through one of its methods; controllers never write
// status directly.
type AppointmentService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
	loyalty    *LoyaltyService
}

func NewAppointmentService(db *gorm.DB, dispatcher *Dispatcher, loyalty *LoyaltyService) *AppointmentService {
	return &AppointmentService{db: db, dispatcher: dispatcher, loyalty: loyalty}
}

// BookingInput is the validated shape of a booking request. Online bookings
// carry the customer's LINE identity and no provider; manual entries may
// assign a provider immediately, which confirms the appointment on create.
type BookingInput struct {
	CustomerName  string
	CustomerPhone string
	LineUserID    *string
	ServiceID     uuid.UUID
	AddonIDs      []uuid.UUID
	Date          string
	Time          string
	Origin        string
	ProviderID    *uuid.UUID // manual origin only
}

// AdminPatch carries the fields an admin may change prior to confirmation.
type AdminPatch struct {
	ServiceID     *uuid.UUID
	AddonIDs      *[]uuid.UUID
	ProviderID    *uuid.UUID
	ClearProvider bool
	Date          *string
	Time          *string
}

// Create validates the booking, writes the appointment and alerts the
// admin inbox. Online bookings start in awaiting_confirmation; a manual
// entry with a provider goes straight to confirmed and takes the slot lock.
func (s *AppointmentService) Create(ctx context.Context, in BookingInput) (*models.Appointment, error) {
	if !utils.ValidDate(in.Date) || !utils.ValidSlot(in.Time) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD and time HH:MM", ErrInvalidInput)
	}
	if !utils.ValidatePhone(in.CustomerPhone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrInvalidInput)
	}
	if in.Origin == "" {
		in.Origin = models.OriginOnline
	}
	if in.Origin == models.OriginOnline && in.ProviderID != nil {
		return nil, fmt.Errorf("%w: online bookings cannot assign a provider", ErrInvalidInput)
	}

	appt := &models.Appointment{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.Where("id = ? AND is_active = true", in.ServiceID).First(&service).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("service %s: %w", in.ServiceID, ErrNotFound)
			}
			return err
		}

		total := service.Price
		var addons []models.AppointmentAddon
		for _, addonID := range in.AddonIDs {
			var addon models.ServiceAddon
			if err := tx.Where("id = ? AND service_id = ? AND is_active = true", addonID, service.ID).
				First(&addon).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("addon %s: %w", addonID, ErrNotFound)
				}
				return err
			}
			total += addon.Price
			addons = append(addons, models.AppointmentAddon{
				AddonID: addon.ID,
				Name:    addon.Name,
				Price:   addon.Price,
			})
		}
		if total <= 0 {
			return fmt.Errorf("%w: booking must resolve to a positive total price", ErrInvalidInput)
		}

		var sameDay int64
		if err := tx.Model(&models.Appointment{}).Where("date = ?", in.Date).Count(&sameDay).Error; err != nil {
			return err
		}

		*appt = models.Appointment{
			CaseNumber:    int(sameDay) + 1,
			CustomerName:  in.CustomerName,
			CustomerPhone: utils.NormalizePhone(in.CustomerPhone),
			LineUserID:    in.LineUserID,
			ServiceID:     service.ID,
			ServiceName:   service.Name,
			TotalPrice:    total,
			Date:          in.Date,
			Time:          in.Time,
			Status:        models.StatusAwaitingConfirmation,
			Origin:        in.Origin,
			Addons:        addons,
		}

		if in.Origin == models.OriginManual && in.ProviderID != nil {
			if err := s.checkProvider(tx, *in.ProviderID); err != nil {
				return err
			}
			appt.ProviderID = in.ProviderID
			appt.Status = models.StatusConfirmed
		}

		if err := tx.Create(appt).Error; err != nil {
			return err
		}

		if appt.Status == models.StatusConfirmed {
			if err := acquireSlotLock(tx, appt, *appt.ProviderID); err != nil {
				return err
			}
			if err := tx.Create(&models.Workorder{
				AppointmentID: appt.ID,
				ProviderID:    *appt.ProviderID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.NotifyAdmin(ctx, EventNewBooking,
		fmt.Sprintf("New booking %s: %s, %s at %s %s", caseLabel(appt), appt.CustomerName, appt.ServiceName, appt.Date, appt.Time))
	if appt.Status == models.StatusConfirmed {
		s.dispatcher.Dispatch(ctx, Event{Category: EventConfirmed, Appointment: appt}, []Recipient{customerRecipient(appt)})
	}
	return appt, nil
}

// ConfirmByAdmin assigns the provider and moves the appointment to
// confirmed. The slot lock insert inside the transaction is the
// authoritative double-booking guard; the advisory availability read only
// produces a friendlier error for the common case.
func (s *AppointmentService) ConfirmByAdmin(ctx context.Context, appointmentID, providerID uuid.UUID) (*models.Appointment, error) {
	appt := &models.Appointment{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadAppointment(tx, appointmentID, appt); err != nil {
			return err
		}
		if appt.Status != models.StatusAwaitingConfirmation {
			return &InvalidTransitionError{From: appt.Status, To: models.StatusConfirmed}
		}
		if err := s.checkProvider(tx, providerID); err != nil {
			return err
		}

		available, err := IsProviderAvailable(tx, providerID, appt.Date, appt.Time, appt.ID)
		if err != nil {
			return err
		}
		if !available {
			return &SlotConflictError{ProviderID: providerID, Date: appt.Date, Time: appt.Time}
		}

		if err := reacquireSlotLock(tx, appt, providerID); err != nil {
			return err
		}

		appt.ProviderID = &providerID
		appt.Status = models.StatusConfirmed
		if err := tx.Save(appt).Error; err != nil {
			return err
		}

		return tx.Create(&models.Workorder{
			AppointmentID: appt.ID,
			ProviderID:    providerID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, Event{Category: EventConfirmed, Appointment: appt}, []Recipient{customerRecipient(appt)})
	return appt, nil
}

// ConfirmByUser is the customer-side acknowledgement of an admin-confirmed
// slot.
func (s *AppointmentService) ConfirmByUser(ctx context.Context, appointmentID uuid.UUID, lineUserID string) (*models.Appointment, error) {
	appt := &models.Appointment{}
	if err := loadAppointment(s.db, appointmentID, appt); err != nil {
		return nil, err
	}
	if !appt.OwnedBy(lineUserID) {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, ErrForbidden)
	}
	if appt.Status != models.StatusConfirmed {
		return nil, &InvalidTransitionError{From: appt.Status, To: models.StatusConfirmed}
	}

	now := time.Now()
	appt.CustomerAckAt = &now
	if err := s.db.Save(appt).Error; err != nil {
		return nil, err
	}

	s.dispatcher.NotifyAdmin(ctx, EventAdminStatusChange,
		fmt.Sprintf("Customer acknowledged appointment %s", caseLabel(appt)))
	return appt, nil
}

// CancelByUser cancels a non-terminal appointment owned by the requesting
// customer. Confirmed appointments honor the cancellation cutoff.
func (s *AppointmentService) CancelByUser(ctx context.Context, appointmentID uuid.UUID, lineUserID string) (*models.Appointment, error) {
	appt := &models.Appointment{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadAppointment(tx, appointmentID, appt); err != nil {
			return err
		}
		if !appt.OwnedBy(lineUserID) {
			return fmt.Errorf("appointment %s: %w", appointmentID, ErrForbidden)
		}
		if appt.Terminal() || appt.Status == models.StatusInProgress {
			return &InvalidTransitionError{From: appt.Status, To: models.StatusCancelled}
		}
		if appt.Status == models.StatusConfirmed {
			if err := s.checkCancelWindow(tx, appt); err != nil {
				return err
			}
		}
		return s.cancel(tx, appt)
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.NotifyAdmin(ctx, EventAdminStatusChange,
		fmt.Sprintf("Appointment %s cancelled by customer", caseLabel(appt)))
	return appt, nil
}

// CancelByAdmin cancels any non-terminal appointment.
func (s *AppointmentService) CancelByAdmin(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error) {
	appt := &models.Appointment{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadAppointment(tx, appointmentID, appt); err != nil {
			return err
		}
		if appt.Terminal() {
			return &InvalidTransitionError{From: appt.Status, To: models.StatusCancelled}
		}
		return s.cancel(tx, appt)
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, Event{
		Category: EventAdminStatusChange,
		Note:     fmt.Sprintf("Your appointment on %s at %s has been cancelled", appt.Date, appt.Time),
	}, []Recipient{customerRecipient(appt)})
	return appt, nil
}

// Start moves a confirmed appointment to in_progress.
func (s *AppointmentService) Start(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error) {
	appt := &models.Appointment{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadAppointment(tx, appointmentID, appt); err != nil {
			return err
		}
		if appt.Status != models.StatusConfirmed {
			return &InvalidTransitionError{From: appt.Status, To: models.StatusInProgress}
		}
		appt.Status = models.StatusInProgress
		if err := tx.Save(appt).Error; err != nil {
			return err
		}
		return tx.Model(&models.Workorder{}).Where("appointment_id = ?", appt.ID).
			Update("status", models.WorkorderInProgress).Error
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Complete finishes an in-progress appointment, records the payment,
// releases the slot and awards loyalty points in the same transaction.
// The customer notification carries the awarded amount.
func (s *AppointmentService) Complete(ctx context.Context, appointmentID uuid.UUID, paymentAmount float64) (*models.Appointment, error) {
	appt := &models.Appointment{}
	awarded := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadAppointment(tx, appointmentID, appt); err != nil {
			return err
		}
		if appt.Status != models.StatusInProgress {
			return &InvalidTransitionError{From: appt.Status, To: models.StatusCompleted}
		}

		if paymentAmount <= 0 {
			paymentAmount = appt.TotalPrice
		}
		now := time.Now()
		appt.Status = models.StatusCompleted
		appt.PaymentAmount = paymentAmount
		appt.PaymentStatus = "paid"
		appt.PaidAt = &now
		if err := tx.Save(appt).Error; err != nil {
			return err
		}
		if err := releaseSlotLock(tx, appt.ID); err != nil {
			return err
		}
		if err := tx.Model(&models.Workorder{}).Where("appointment_id = ?", appt.ID).
			Update("status", models.WorkorderDone).Error; err != nil {
			return err
		}

		customer, err := s.loyalty.EnsureCustomer(tx, appt.CustomerName, appt.CustomerPhone, appt.LineUserID)
		if err != nil {
			return err
		}
		amount, err := pointAwardAmount(tx, paymentAmount)
		if err != nil {
			return err
		}
		credited, err := s.loyalty.awardPoints(tx, customer.ID, appt.ID, amount)
		if err != nil {
			return err
		}
		awarded = credited
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, Event{
		Category:      EventCompleted,
		Appointment:   appt,
		PointsAwarded: awarded,
	}, []Recipient{customerRecipient(appt)})
	return appt, nil
}

// UpdateByAdmin edits service, add-ons, provider or slot prior to
// confirmation. Any change touching the (provider, date, time) triple
// re-validates availability excluding this appointment and re-takes the
// slot lock.
func (s *AppointmentService) UpdateByAdmin(ctx context.Context, appointmentID uuid.UUID, patch AdminPatch) (*models.Appointment, error) {
	appt := &models.Appointment{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadAppointment(tx, appointmentID, appt); err != nil {
			return err
		}
		if appt.Status != models.StatusAwaitingConfirmation {
			return &InvalidTransitionError{From: appt.Status, To: appt.Status}
		}

		if patch.Date != nil {
			if !utils.ValidDate(*patch.Date) {
				return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
			}
			appt.Date = *patch.Date
		}
		if patch.Time != nil {
			if !utils.ValidSlot(*patch.Time) {
				return fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
			}
			appt.Time = *patch.Time
		}

		if patch.ServiceID != nil || patch.AddonIDs != nil {
			serviceID := appt.ServiceID
			if patch.ServiceID != nil {
				serviceID = *patch.ServiceID
			}
			var service models.Service
			if err := tx.Where("id = ? AND is_active = true", serviceID).First(&service).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
				}
				return err
			}

			addonIDs := existingAddonIDs(appt)
			if patch.AddonIDs != nil {
				addonIDs = *patch.AddonIDs
			}
			total := service.Price
			var addons []models.AppointmentAddon
			for _, addonID := range addonIDs {
				var addon models.ServiceAddon
				if err := tx.Where("id = ? AND service_id = ? AND is_active = true", addonID, service.ID).
					First(&addon).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("addon %s: %w", addonID, ErrNotFound)
					}
					return err
				}
				total += addon.Price
				addons = append(addons, models.AppointmentAddon{
					AppointmentID: appt.ID,
					AddonID:       addon.ID,
					Name:          addon.Name,
					Price:         addon.Price,
				})
			}
			if total <= 0 {
				return fmt.Errorf("%w: booking must resolve to a positive total price", ErrInvalidInput)
			}

			if err := tx.Where("appointment_id = ?", appt.ID).Delete(&models.AppointmentAddon{}).Error; err != nil {
				return err
			}
			if len(addons) > 0 {
				if err := tx.Create(&addons).Error; err != nil {
					return err
				}
			}
			appt.ServiceID = service.ID
			appt.ServiceName = service.Name
			appt.TotalPrice = total
			appt.Addons = addons
		}

		if patch.ClearProvider {
			appt.ProviderID = nil
			if err := releaseSlotLock(tx, appt.ID); err != nil {
				return err
			}
		} else if patch.ProviderID != nil {
			if err := s.checkProvider(tx, *patch.ProviderID); err != nil {
				return err
			}
			appt.ProviderID = patch.ProviderID
		}

		slotChanged := patch.Date != nil || patch.Time != nil || patch.ProviderID != nil
		if appt.ProviderID != nil && slotChanged {
			available, err := IsProviderAvailable(tx, *appt.ProviderID, appt.Date, appt.Time, appt.ID)
			if err != nil {
				return err
			}
			if !available {
				return &SlotConflictError{ProviderID: *appt.ProviderID, Date: appt.Date, Time: appt.Time}
			}
			if err := reacquireSlotLock(tx, appt, *appt.ProviderID); err != nil {
				return err
			}
		}

		return tx.Save(appt).Error
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *AppointmentService) cancel(tx *gorm.DB, appt *models.Appointment) error {
	appt.Status = models.StatusCancelled
	if err := tx.Save(appt).Error; err != nil {
		return err
	}
	if err := releaseSlotLock(tx, appt.ID); err != nil {
		return err
	}
	return tx.Model(&models.Workorder{}).Where("appointment_id = ?", appt.ID).
		Update("status", models.WorkorderCancelled).Error
}

func (s *AppointmentService) checkCancelWindow(tx *gorm.DB, appt *models.Appointment) error {
	settings, err := LoadAppSettings(tx)
	if err != nil {
		return err
	}
	if settings.CancelCutoffHours <= 0 {
		return nil
	}
	slotTime, err := utils.ParseSlot(appt.Date, appt.Time, utils.ServiceLocation())
	if err != nil {
		return err
	}
	if time.Until(slotTime) < time.Duration(settings.CancelCutoffHours)*time.Hour {
		return fmt.Errorf("cancellation window of %dh has passed: %w", settings.CancelCutoffHours, ErrForbidden)
	}
	return nil
}

func (s *AppointmentService) checkProvider(tx *gorm.DB, providerID uuid.UUID) error {
	var provider models.Employee
	if err := tx.Where("id = ? AND is_active = true", providerID).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("provider %s: %w", providerID, ErrNotFound)
		}
		return err
	}
	return nil
}

func loadAppointment(tx *gorm.DB, id uuid.UUID, dest *models.Appointment) error {
	if err := tx.Preload("Addons").Where("id = ?", id).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("appointment %s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

func acquireSlotLock(tx *gorm.DB, appt *models.Appointment, providerID uuid.UUID) error {
	lock := models.SlotLock{
		ProviderID:    providerID,
		Date:          appt.Date,
		Time:          appt.Time,
		AppointmentID: appt.ID,
	}
	if err := tx.Create(&lock).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &SlotConflictError{ProviderID: providerID, Date: appt.Date, Time: appt.Time}
		}
		return err
	}
	return nil
}

func reacquireSlotLock(tx *gorm.DB, appt *models.Appointment, providerID uuid.UUID) error {
	if err := releaseSlotLock(tx, appt.ID); err != nil {
		return err
	}
	return acquireSlotLock(tx, appt, providerID)
}

func releaseSlotLock(tx *gorm.DB, appointmentID uuid.UUID) error {
	return tx.Where("appointment_id = ?", appointmentID).Delete(&models.SlotLock{}).Error
}

func pointAwardAmount(tx *gorm.DB, paid float64) (int, error) {
	settings, err := LoadPointSettings(tx)
	if err != nil {
		return 0, err
	}
	if !settings.Enabled {
		return 0, nil
	}
	return int(paid*settings.PointsPerCurrency) + settings.PointsPerVisit, nil
}

func existingAddonIDs(appt *models.Appointment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(appt.Addons))
	for _, a := range appt.Addons {
		ids = append(ids, a.AddonID)
	}
	return ids
}

func customerRecipient(appt *models.Appointment) Recipient {
	r := Recipient{Name: appt.CustomerName}
	if appt.LineUserID != nil {
		r.LineUserID = *appt.LineUserID
	}
	return r
}
