package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/services"
)

func TestIsProviderAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")
	other := seedProvider(t, env.db, "June")

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	require.NoError(t, err)

	// The confirmed appointment blocks its own slot.
	available, err := services.IsProviderAvailable(env.db, provider.ID, "2030-01-10", "14:00", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, available)

	// Other providers, slots and days are unaffected.
	for _, probe := range []struct {
		provider uuid.UUID
		date     string
		slot     string
	}{
		{other.ID, "2030-01-10", "14:00"},
		{provider.ID, "2030-01-10", "15:00"},
		{provider.ID, "2030-01-11", "14:00"},
	} {
		available, err := services.IsProviderAvailable(env.db, probe.provider, probe.date, probe.slot, uuid.Nil)
		require.NoError(t, err)
		assert.True(t, available, "provider %s at %s %s", probe.provider, probe.date, probe.slot)
	}

	// Excluding the occupying appointment frees the slot for edits.
	available, err = services.IsProviderAvailable(env.db, provider.ID, "2030-01-10", "14:00", appt.ID)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsProviderAvailable_TerminalStatusesDoNotBlock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := seedService(t, env.db, 500)
	provider := seedProvider(t, env.db, "May")

	appt, err := env.appointments.Create(ctx, booking(service, "U-nok", "2030-01-10", "14:00"))
	require.NoError(t, err)
	_, err = env.appointments.ConfirmByAdmin(ctx, appt.ID, provider.ID)
	require.NoError(t, err)
	_, err = env.appointments.Start(ctx, appt.ID)
	require.NoError(t, err)

	// In progress still blocks.
	available, err := services.IsProviderAvailable(env.db, provider.ID, "2030-01-10", "14:00", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, available)

	_, err = env.appointments.Complete(ctx, appt.ID, 0)
	require.NoError(t, err)

	available, err = services.IsProviderAvailable(env.db, provider.ID, "2030-01-10", "14:00", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, available)
}
