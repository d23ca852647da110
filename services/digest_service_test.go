package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"
)

func seedDigestAppointment(t *testing.T, env *testEnv, lineUserID, date, slot, status string) models.Appointment {
	t.Helper()
	appt := models.Appointment{
		CustomerName:  "Customer " + lineUserID,
		CustomerPhone: "+66810000000",
		ServiceName:   "Gel Manicure",
		TotalPrice:    500,
		Date:          date,
		Time:          slot,
		Status:        status,
		Origin:        models.OriginOnline,
	}
	if lineUserID != "" {
		appt.LineUserID = strPtr(lineUserID)
	}
	require.NoError(t, env.db.Create(&appt).Error)
	return appt
}

func TestSendDailyNotifications_FiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	today := time.Now().In(utils.ServiceLocation()).Format(utils.DateLayout)

	// Five appointments today, three in a live status.
	seedDigestAppointment(t, env, "U-a", today, "10:00", models.StatusAwaitingConfirmation)
	seedDigestAppointment(t, env, "U-b", today, "11:00", models.StatusAwaitingConfirmation)
	seedDigestAppointment(t, env, "U-c", today, "12:00", models.StatusConfirmed)
	seedDigestAppointment(t, env, "U-d", today, "13:00", models.StatusCompleted)
	seedDigestAppointment(t, env, "U-e", today, "14:00", models.StatusCancelled)
	// A different day never shows up.
	seedDigestAppointment(t, env, "U-f", "2030-01-10", "10:00", models.StatusConfirmed)

	report, err := env.digests.SendDailyNotifications(context.Background(), false)
	require.NoError(t, err)

	assert.True(t, report.Enabled)
	assert.Equal(t, today, report.Date)
	assert.Equal(t, 5, report.TotalAppointments)
	assert.Equal(t, 3, report.ValidStatusAppointments)
	assert.Equal(t, 3, report.SentCount)
	assert.Equal(t, 0, report.FailureCount)
	assert.Equal(t, 1, env.pusher.sentTo("U-a"))
	assert.Equal(t, 0, env.pusher.sentTo("U-d"))
	assert.Equal(t, 0, env.pusher.sentTo("U-f"))
}

func TestSendDailyNotifications_CountsFailuresAndSkips(t *testing.T) {
	env := newTestEnv(t)
	env.pusher.failFor["U-broken"] = true
	today := time.Now().In(utils.ServiceLocation()).Format(utils.DateLayout)

	seedDigestAppointment(t, env, "U-ok", today, "10:00", models.StatusConfirmed)
	seedDigestAppointment(t, env, "U-broken", today, "11:00", models.StatusConfirmed)
	seedDigestAppointment(t, env, "", today, "12:00", models.StatusConfirmed) // no LINE identity

	report, err := env.digests.SendDailyNotifications(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 3, report.ValidStatusAppointments)
	assert.Equal(t, 1, report.SentCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.Equal(t, 1, report.SkipCount)
}

func TestSendDailyNotifications_OneDigestPerCustomer(t *testing.T) {
	env := newTestEnv(t)
	today := time.Now().In(utils.ServiceLocation()).Format(utils.DateLayout)

	seedDigestAppointment(t, env, "U-dup", today, "10:00", models.StatusConfirmed)
	seedDigestAppointment(t, env, "U-dup", today, "14:00", models.StatusConfirmed)
	seedDigestAppointment(t, env, "U-single", today, "11:00", models.StatusConfirmed)

	report, err := env.digests.SendDailyNotifications(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 3, report.ValidStatusAppointments)
	assert.Equal(t, 2, report.SentCount)
	assert.Equal(t, 1, env.pusher.sentTo("U-dup"))
	assert.Equal(t, 1, env.pusher.sentTo("U-single"))
}

func TestSendDailyNotifications_MockModeSendsNothing(t *testing.T) {
	env := newTestEnv(t)
	today := time.Now().In(utils.ServiceLocation()).Format(utils.DateLayout)
	seedDigestAppointment(t, env, "U-a", today, "10:00", models.StatusConfirmed)

	report, err := env.digests.SendDailyNotifications(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SentCount)
	assert.Equal(t, 0, env.pusher.sentTo("U-a"))
}

func TestSendDailyNotifications_DisabledToggle(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Create(&models.NotificationSettings{
		AllNotifications:             true,
		DailyAppointmentNotification: false,
		ReminderNotification:         true,
	}).Error)

	today := time.Now().In(utils.ServiceLocation()).Format(utils.DateLayout)
	seedDigestAppointment(t, env, "U-a", today, "10:00", models.StatusConfirmed)

	report, err := env.digests.SendDailyNotifications(context.Background(), false)
	require.NoError(t, err)

	assert.False(t, report.Enabled)
	assert.Equal(t, 0, report.SentCount)
	assert.Equal(t, 0, env.pusher.sentTo("U-a"))
}

func TestSendAppointmentReminders_StampsAndDeduplicates(t *testing.T) {
	env := newTestEnv(t)

	target := utils.RoundToSlot(time.Now().In(utils.ServiceLocation()).Add(time.Hour), 60)
	date := target.Format(utils.DateLayout)
	slot := target.Format(utils.SlotLayout)

	due := seedDigestAppointment(t, env, "U-due", date, slot, models.StatusConfirmed)
	seedDigestAppointment(t, env, "U-pending", date, slot, models.StatusAwaitingConfirmation)

	report, err := env.digests.SendAppointmentReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalAppointments)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 0, report.FailureCount)
	assert.Equal(t, 1, env.pusher.sentTo("U-due"))
	assert.Equal(t, 0, env.pusher.sentTo("U-pending"))

	var stamped models.Appointment
	require.NoError(t, env.db.First(&stamped, "id = ?", due.ID).Error)
	assert.NotNil(t, stamped.ReminderSentAt)

	// The stamp keeps a second run from reminding again.
	second, err := env.digests.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.TotalAppointments)
	assert.Equal(t, 0, second.SuccessCount)
	assert.Equal(t, 1, env.pusher.sentTo("U-due"))
}

func TestSendAppointmentReminders_DisabledToggle(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Create(&models.NotificationSettings{
		AllNotifications:             false,
		DailyAppointmentNotification: true,
		ReminderNotification:         true,
	}).Error)

	target := utils.RoundToSlot(time.Now().In(utils.ServiceLocation()).Add(time.Hour), 60)
	due := seedDigestAppointment(t, env, "U-due",
		target.Format(utils.DateLayout), target.Format(utils.SlotLayout), models.StatusConfirmed)

	report, err := env.digests.SendAppointmentReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalAppointments)
	assert.Equal(t, 0, env.pusher.sentTo("U-due"))

	var untouched models.Appointment
	require.NoError(t, env.db.First(&untouched, "id = ?", due.ID).Error)
	assert.Nil(t, untouched.ReminderSentAt)
}
