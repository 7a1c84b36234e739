package app

import (
	"context"
	"testing"

	"finance_tracker_bot/internal/domain/company"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyService_Register(t *testing.T) {
	ctx := context.Background()
	svc := NewCompanyService(newMemCompanies(), quietLog())

	u, created, err := svc.Register(ctx, 42, "Оля", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, u.LastName.Valid)
	require.True(t, u.SelectedCompanyID.Valid)

	current, err := svc.Current(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, company.PersonalName, current.Name)
	assert.Equal(t, int64(42), current.OwnerID)

	again, created, err := svc.Register(ctx, 42, "Оля", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.SelectedCompanyID, again.SelectedCompanyID)

	list, selected, err := svc.List(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, current.ID, selected)
}

func TestCompanyService_CreateAndSelect(t *testing.T) {
	ctx := context.Background()
	svc := NewCompanyService(newMemCompanies(), quietLog())
	_, _, err := svc.Register(ctx, 1, "Owner", "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, "   ")
	assert.ErrorIs(t, err, company.ErrEmptyName)

	_, err = svc.Create(ctx, 99, "Ghost")
	assert.ErrorIs(t, err, company.ErrUserNotFound)

	shop, err := svc.Create(ctx, 1, " Магазин ")
	require.NoError(t, err)
	assert.Equal(t, "Магазин", shop.Name)

	current, err := svc.Current(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, current.ID)

	list, _, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)

	personal := list[0]
	selected, err := svc.Select(ctx, 1, personal.ID)
	require.NoError(t, err)
	assert.Equal(t, personal.ID, selected.ID)
}

func TestCompanyService_Membership(t *testing.T) {
	ctx := context.Background()
	svc := NewCompanyService(newMemCompanies(), quietLog())
	_, _, err := svc.Register(ctx, 1, "Owner", "")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, 2, "Guest", "")
	require.NoError(t, err)

	shop, err := svc.Create(ctx, 1, "Магазин")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Authorize(ctx, 2, shop.ID), company.ErrNotMember)
	_, err = svc.Select(ctx, 2, shop.ID)
	assert.ErrorIs(t, err, company.ErrNotMember)

	_, err = svc.AddMember(ctx, 2, shop.ID, 2)
	assert.ErrorIs(t, err, company.ErrNotOwner)
	_, err = svc.AddMember(ctx, 1, shop.ID, 3)
	assert.ErrorIs(t, err, company.ErrUserNotFound)

	_, err = svc.AddMember(ctx, 1, shop.ID, 2)
	require.NoError(t, err)
	assert.NoError(t, svc.Authorize(ctx, 2, shop.ID))

	members, err := svc.Members(ctx, shop.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, members)
}

func TestCompanyService_CurrentWithoutRegistration(t *testing.T) {
	svc := NewCompanyService(newMemCompanies(), quietLog())
	_, err := svc.Current(context.Background(), 5)
	assert.ErrorIs(t, err, company.ErrUserNotFound)
}
