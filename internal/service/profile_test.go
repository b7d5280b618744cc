package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/deskboard/internal/model"
)

func TestProfileGet_DefaultWhenNeverSaved(t *testing.T) {
	svc := NewProfileService(newTestStore(t), discardLogger())

	p, err := svc.Get(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProfile(uid), p)
}

func TestProfileSave_UIDIsAlwaysTheCaller(t *testing.T) {
	svc := NewProfileService(newTestStore(t), discardLogger())
	ctx := context.Background()

	saved, err := svc.Save(ctx, uid, model.Profile{UID: "someone-else", Name: "Ann", City: "Cebu", Age: "31"})
	require.NoError(t, err)
	assert.Equal(t, uid, saved.UID)

	got, err := svc.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "31", got.Age)
	assert.Equal(t, "Ann", got.DisplayName())
}

func TestProfileSave_OverwritesEveryField(t *testing.T) {
	svc := NewProfileService(newTestStore(t), discardLogger())
	ctx := context.Background()

	_, err := svc.Save(ctx, uid, model.Profile{Name: "Ann", Phone: "0917", LastName: "Reyes"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, uid, model.Profile{Name: "Ann"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "", got.Phone)
	assert.Equal(t, "", got.LastName)
}

func TestProfile_SaveAndDeleteLeaveProductsAlone(t *testing.T) {
	store := newTestStore(t)
	profiles := NewProfileService(store, discardLogger())
	products := NewProductService(store, discardLogger())
	ctx := context.Background()

	_, err := products.Create(ctx, uid, lamp())
	require.NoError(t, err)

	_, err = profiles.Save(ctx, uid, model.Profile{Name: "Ann"})
	require.NoError(t, err)

	cleared, err := profiles.Delete(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProfile(uid), cleared)

	got, err := profiles.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProfile(uid), got)

	list, err := products.List(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
