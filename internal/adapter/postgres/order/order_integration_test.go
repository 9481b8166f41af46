//go:build integration

package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgcatalog "github.com/nandaputra/homecrew/internal/adapter/postgres/catalog"
	pgorder "github.com/nandaputra/homecrew/internal/adapter/postgres/order"
	domaincatalog "github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
	"github.com/nandaputra/homecrew/internal/testutil"
)

func setupOrder(t *testing.T, ctx context.Context, repo *pgorder.Repository, svcRepo *pgcatalog.Repository, status domainorder.Status) domainorder.Order {
	t.Helper()
	svc, err := svcRepo.Create(ctx, domaincatalog.New("svc-"+uuid.New().String()[:8], domaincatalog.CategoryCarWash, 75000, 60))
	require.NoError(t, err)

	o := domainorder.New(svc.ID, "Budi", "+628123", geo.Point{Lat: -6.2088, Lng: 106.8456}, "Jl. Sudirman 1", domainorder.UrgencyMedium, nil)
	created, err := repo.Create(ctx, o)
	require.NoError(t, err)

	if status != domainorder.StatusPending {
		require.NoError(t, repo.UpdateStatus(ctx, created.ID, domainorder.StatusPending, domainorder.StatusConfirmed, ""))
		created.Status = domainorder.StatusConfirmed
	}
	return created
}

func TestUpdateStatusCAS(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := pgorder.New(pool)
	svcRepo := pgcatalog.New(pool)
	ctx := context.Background()

	o := setupOrder(t, ctx, repo, svcRepo, domainorder.StatusPending)

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, domainorder.StatusPending, domainorder.StatusConfirmed, "paid"))

	// A repeat of the same transition loses the CAS.
	err := repo.UpdateStatus(ctx, o.ID, domainorder.StatusPending, domainorder.StatusConfirmed, "")
	require.Error(t, err)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusConfirmed, got.Status)

	// The transition appended a timeline entry carrying the note.
	last := got.Timeline[len(got.Timeline)-1]
	assert.Equal(t, domainorder.StatusConfirmed, last.Status)
	assert.Equal(t, "paid", last.Note)
}

func TestAssignWorkerCAS(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := pgorder.New(pool)
	svcRepo := pgcatalog.New(pool)
	ctx := context.Background()

	o := setupOrder(t, ctx, repo, svcRepo, domainorder.StatusConfirmed)
	workerA := uuid.New()
	workerB := uuid.New()

	require.NoError(t, repo.AssignWorker(ctx, o.ID, workerA, "distance=0.5km(1.00) total=0.950", time.Now().UTC()))

	// A second assignment attempt on the now-assigned order must fail.
	err := repo.AssignWorker(ctx, o.ID, workerB, "rationale", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, errors.Is(err, portorder.ErrNotAssignable))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusAssigned, got.Status)
	require.NotNil(t, got.WorkerID)
	assert.Equal(t, workerA, *got.WorkerID)
	require.NotNil(t, got.AssignedAt)

	last := got.Timeline[len(got.Timeline)-1]
	assert.Contains(t, last.Note, "distance=")
}

func TestAssignWorker_MissingOrder(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := pgorder.New(pool)
	ctx := context.Background()

	err := repo.AssignWorker(ctx, uuid.New(), uuid.New(), "rationale", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, errors.Is(err, portorder.ErrNotFound))
}

func TestGetByTrackingCode(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := pgorder.New(pool)
	svcRepo := pgcatalog.New(pool)
	ctx := context.Background()

	o := setupOrder(t, ctx, repo, svcRepo, domainorder.StatusPending)

	got, err := repo.GetByTrackingCode(ctx, o.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = repo.GetByTrackingCode(ctx, "HC-DEADBEEF")
	require.Error(t, err)
	assert.True(t, errors.Is(err, portorder.ErrNotFound))
}

func TestCountActiveByWorker(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := pgorder.New(pool)
	svcRepo := pgcatalog.New(pool)
	ctx := context.Background()

	workerID := uuid.New()

	// assigned does not count toward workload; accepted does.
	assigned := setupOrder(t, ctx, repo, svcRepo, domainorder.StatusConfirmed)
	require.NoError(t, repo.AssignWorker(ctx, assigned.ID, workerID, "r", time.Now().UTC()))

	active := setupOrder(t, ctx, repo, svcRepo, domainorder.StatusConfirmed)
	require.NoError(t, repo.AssignWorker(ctx, active.ID, workerID, "r", time.Now().UTC()))
	require.NoError(t, repo.UpdateStatus(ctx, active.ID, domainorder.StatusAssigned, domainorder.StatusAccepted, ""))

	n, err := repo.CountActiveByWorker(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
