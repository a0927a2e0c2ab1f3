package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
)

func TestWorkloadServiceWorkload(t *testing.T) {
	store := fixtureStore(t)
	svc := NewWorkloadService(store, nil, 0)

	workload, err := svc.Workload(context.Background(), "t-amir", testMonday)
	require.NoError(t, err)
	assert.Equal(t, "t-amir", workload.TeacherID)
	assert.Equal(t, 1, workload.Base)
	assert.Equal(t, 35, workload.Cap)
	assert.Equal(t, "2026-01-04", workload.WeekStart.Format("2006-01-02"))
	assert.Equal(t, "2026-01-08", workload.WeekEnd.Format("2006-01-02"))

	_, err = svc.Workload(context.Background(), "t-ghost", testMonday)
	assertErrorCode(t, err, appErrors.ErrNotFound.Code)

	_, err = svc.Workload(context.Background(), "t-amir", "05-01-2026")
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}

func TestWorkloadServiceAvailability(t *testing.T) {
	store := fixtureStore(t)
	svc := NewWorkloadService(store, nil, 0)

	availability, err := svc.Availability(context.Background(), "t-amir", testMonday, 2)
	require.NoError(t, err)
	assert.False(t, availability.Available)
	assert.Equal(t, "absent", availability.Reason)

	availability, err = svc.Availability(context.Background(), "t-dina", testMonday, 2)
	require.NoError(t, err)
	assert.True(t, availability.Available)

	_, err = svc.Availability(context.Background(), "t-dina", testMonday, 0)
	assertErrorCode(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Availability(context.Background(), "t-ghost", testMonday, 2)
	assertErrorCode(t, err, appErrors.ErrNotFound.Code)
}
