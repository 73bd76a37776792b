package memory

import (
	"context"
	"testing"

	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository()

	a := &customer.Customer{Name: "Ann"}
	b := &customer.Customer{Name: "Ben"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Ben", got.Name)

	got.Name = "Benjamin"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Benjamin", got.Name)

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, customer.ErrCustomerNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 1), customer.ErrCustomerNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &customer.Customer{ID: 99}), customer.ErrCustomerNotFound)

	c := &customer.Customer{Name: "Cat"}
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, int64(3), c.ID, "ids are never reused")
}

func TestCustomerRepository_ListAllIsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository()
	require.NoError(t, repo.BulkCreate(ctx, []*customer.Customer{{Name: "Ann"}, {Name: "Ben"}, {Name: "Cat"}}))

	list, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Ann", "Ben", "Cat"}, []string{list[0].Name, list[1].Name, list[2].Name})

	list[0].Name = "Mutated"
	again, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", again[0].Name)
}

func TestHistoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository()

	require.NoError(t, repo.AppendEvents(ctx, []notification.Event{{CustomerID: 1}, {CustomerID: 2}}))
	require.NoError(t, repo.AppendEvents(ctx, []notification.Event{{CustomerID: 3}}))

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(3), events[2].CustomerID)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(nil)

	s, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{90, 30, 7}, s.ReminderDays)

	s.ReminderDays = []int{60}
	again, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{90, 30, 7}, again.ReminderDays)

	require.NoError(t, repo.SaveSettings(ctx, s))
	again, err = repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{60}, again.ReminderDays)
}
