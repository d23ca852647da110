package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/services"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"
)

func TestCreateAppointment_StartsAwaitingConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusAwaitingConfirmation, appt.Status)
	assert.Nil(t, appt.ProviderID)
	assert.Equal(t, 1, appt.CaseNumber)
	assert.Equal(t, 500.0, appt.TotalPrice)

	// The booking alerts the admin inbox.
	assert.EqualValues(t, 1, countRows(t, env.db, &models.Notification{}, "category = ?", services.EventNewBooking))

	// Case numbers are a per-day sequence.
	second, err := env.appointments.Create(ctx, booking(service, "U-mai", "2030-01-10", "15:00"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.CaseNumber)
}

func TestCreateAppointment_AddonsSumIntoTotal(t *testing.T) {
	env := newTestEnv(t)
	service := seedService(t, env.db, 500)
	addon := models.ServiceAddon{ServiceID: service.ID, Name: "Nail art", Price: 150, IsActive: true}
	require.NoError(t, env.db.Create(&addon).Error)

	in := booking(service, "U-nok", "2030-01-10", "14:00")
	in.AddonIDs = []uuid.UUID{addon.ID}
	appt, err := env.appointments.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 650.0, appt.TotalPrice)
	require.Len(t, appt.Addons, 1)
	assert.Equal(t, "Nail art", appt.Addons[0].Name)
}

func TestCreateAppointment_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)

	_, err := env.appointments.Create(ctx, booking(service, "U-nok", "10/01/2030", "14:00"))
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	in := booking(service, "U-nok", "2030-01-10", "14:00")
	in.ServiceID = uuid.New()
	_, err = env.appointments.Create(ctx, in)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestConfirmByAdmin_AssignsProviderAndLocksSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)

	confirmed, err := env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ProviderID)
	assert.Equal(t, provider.ID, *confirmed.ProviderID)

	assert.EqualValues(t, 1, countRows(t, env.db, &models.SlotLock{}, "appointment_id = ?", appt.ID))
	assert.EqualValues(t, 1, countRows(t, env.db, &models.Workorder{}, "appointment_id = ?", appt.ID))
	assert.Equal(t, 1, env.pusher.sentTo("U-nok"))
}

// Scenario: two customers race for the same provider slot; the second
// commit is rejected.
func TestConfirmByAdmin_SlotConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	first, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)
	second, err := env.appointments.Create(ctx, booking(service, "U-mai", "2030-01-10", "14:00"))
	require.NoError(t, err)

	_, err = env.appointments.ConfirmByAdmin(ctx, first.ID, provider.ID)
	require.NoError(t, err)

	_, err = env.appointments.ConfirmByAdmin(ctx, second.ID, provider.ID)
	assert.ErrorIs(t, err, services.ErrSlotConflict)

	var conflictErr *services.SlotConflictError
	assert.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "2030-01-10", conflictErr.Date)

	// The losing appointment is untouched.
	var reloaded models.Appointment
	require.NoError(t, env.db.First(&reloaded, "id = ?", second.ID).Error)
	assert.Equal(t, models.StatusAwaitingConfirmation, reloaded.Status)
	assert.Nil(t, reloaded.ProviderID)
}

func TestConfirmByAdmin_NotFoundAndInvalidState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	_, err := env.appointments.ConfirmByAdmin(ctx, uuid.New(), provider.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	require.NoError(t, err)

	// Confirming twice is not a legal transition.
	_, err = env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestCancelByUser_IdentityAndStateRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)

	_, err = env.appointments.CancelByUser(ctx, uuid.New(), "U-nok")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = env.appointments.CancelByUser(ctx, appt.ID, "U-somebody-else")
	assert.ErrorIs(t, err, services.ErrForbidden)

	cancelled, err := env.appointments.CancelByUser(ctx, appt.ID, "U-nok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// Terminal appointments reject further cancellation and keep their status.
	_, err = env.appointments.CancelByUser(ctx, appt.ID, "U-nok")
	assert.ErrorIs(t, err, services.ErrInvalidState)
	var reloaded models.Appointment
	require.NoError(t, env.db.First(&reloaded, "id = ?", appt.ID).Error)
	assert.Equal(t, models.StatusCancelled, reloaded.Status)
}

func TestCancelByUser_InsideCutoffWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	// A confirmed slot one hour out is inside the default 24h cutoff.
	soon := time.Now().In(utils.ServiceLocation()).Add(time.Hour)
	appt, err := env.appointments.Create(ctx, booking(service, "U-nok",
		soon.Format(utils.DateLayout), soon.Format(utils.SlotLayout)))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	require.NoError(t, err)

	_, err = env.appointments.CancelByUser(ctx, appt.ID, "U-nok")
	assert.ErrorIs(t, err, services.ErrForbidden)

	// The admin side has no cutoff.
	cancelled, err := env.appointments.CancelByAdmin(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestCancelReleasesSlotForRebooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	first, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, first.ID, provider.ID)
	require.NoError(t, err)

	_, err = env.appointments.CancelByAdmin(ctx, first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, countRows(t, env.db, &models.SlotLock{}, "appointment_id = ?", first.ID))

	// A cancelled appointment no longer blocks the slot.
	second, err := env.appointments.Create(ctx, booking(service, "U-mai", "2030-01-10", "14:00"))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, second.ID, provider.ID)
	assert.NoError(t, err)
}

func TestConfirmByUser_Acknowledgement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)

	// Not legal before the admin confirms.
	_, err = env.appointments.ConfirmByUser(ctx, appt.ID, "U-nok")
	assert.ErrorIs(t, err, services.ErrInvalidState)

	_, err = env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	require.NoError(t, err)

	_, err = env.appointments.ConfirmByUser(ctx, appt.ID, "U-somebody-else")
	assert.ErrorIs(t, err, services.ErrForbidden)

	acked, err := env.appointments.ConfirmByUser(ctx, appt.ID, "U-nok")
	require.NoError(t, err)
	assert.NotNil(t, acked.CustomerAckAt)
}

func TestCompleteAwardsPointsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	require.NoError(t, err)

	// Completing from confirmed skips in_progress and is rejected.
	_, err = env.appointments.Complete(ctx, appt.ID, 0)
	assert.ErrorIs(t, err, services.ErrInvalidState)

	_, err = env.appointments.Start(ctx, appt.ID)
	require.NoError(t, err)

	completed, err := env.appointments.Complete(ctx, appt.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.Equal(t, "paid", completed.PaymentStatus)
	assert.Equal(t, 500.0, completed.PaymentAmount)
	assert.EqualValues(t, 0, countRows(t, env.db, &models.SlotLock{}, "appointment_id = ?", appt.ID))

	// Default policy: 0.01 points per currency unit plus 1 per visit.
	var customer models.Customer
	require.NoError(t, env.db.First(&customer, "line_user_id = ?", "U-nok").Error)
	assert.Equal(t, 6, customer.Points)
	require.NotNil(t, customer.LastAwardAppointmentID)
	assert.Equal(t, appt.ID, *customer.LastAwardAppointmentID)

	// A retried completion fails cleanly and cannot double-award.
	_, err = env.appointments.Complete(ctx, appt.ID, 0)
	assert.ErrorIs(t, err, services.ErrInvalidState)
	require.NoError(t, env.loyalty.AwardPointsOnCompletion(ctx, customer.ID, appt.ID, 6))
	require.NoError(t, env.db.First(&customer, "line_user_id = ?", "U-nok").Error)
	assert.Equal(t, 6, customer.Points)
}

func TestCompleteWithPointsDisabledAwardsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.db.Create(&models.PointSettings{Enabled: false}).Error)
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	require.NoError(t, err)
	_, err = env.appointments.Start(ctx, appt.ID)
	require.NoError(t, err)
	_, err = env.appointments.Complete(ctx, appt.ID, 0)
	require.NoError(t, err)

	var customer models.Customer
	require.NoError(t, env.db.First(&customer, "line_user_id = ?", "U-nok").Error)
	assert.Equal(t, 0, customer.Points)
}

func TestUpdateByAdmin_RechecksAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	taken, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, taken.ID, provider.ID)
	require.NoError(t, err)

	editable, err := env.appointments.Create(ctx, booking(service, "U-mai", "2030-01-10", "15:00"))
	require.NoError(t, err)

	// Assigning the provider at the taken slot is rejected.
	_, err = env.appointments.UpdateByAdmin(ctx, editable.ID, services.AdminPatch{
		ProviderID: &provider.ID,
		Time:       strPtr("14:00"),
	})
	assert.ErrorIs(t, err, services.ErrSlotConflict)

	// The free slot commits and takes its own lock.
	updated, err := env.appointments.UpdateByAdmin(ctx, editable.ID, services.AdminPatch{
		ProviderID: &provider.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ProviderID)
	assert.Equal(t, "15:00", updated.Time)
	assert.EqualValues(t, 1, countRows(t, env.db, &models.SlotLock{}, "appointment_id = ?", editable.ID))

	// Edits after confirmation are rejected.
	_, err = env.appointments.UpdateByAdmin(ctx, taken.ID, services.AdminPatch{Time: strPtr("16:00")})
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestManualCreateWithProviderConfirmsImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	in := services.BookingInput{
		CustomerName:  "Walk-in",
		CustomerPhone: "+66811111111",
		ServiceID:     service.ID,
		Date:          "2030-01-10",
		Time:          "14:00",
		Origin:        models.OriginManual,
		ProviderID:    &provider.ID,
	}
	appt, err := env.appointments.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, appt.Status)
	assert.EqualValues(t, 1, countRows(t, env.db, &models.SlotLock{}, "appointment_id = ?", appt.ID))

	// The occupied slot now rejects a second manual entry.
	in.CustomerPhone = "+66812222222"
	_, err = env.appointments.Create(ctx, in)
	assert.ErrorIs(t, err, services.ErrSlotConflict)
}
