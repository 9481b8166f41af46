package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domaincatalog "github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	"github.com/nandaputra/homecrew/internal/mocks"
	portcatalog "github.com/nandaputra/homecrew/internal/port/catalog"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
	ordersvc "github.com/nandaputra/homecrew/internal/service/order"
)

type orderDeps struct {
	repo     *mocks.MockOrderRepository
	catalog  *mocks.MockCatalogRepository
	workers  *mocks.MockWorkerRepository
	assigner *mocks.MockAssigner
	bus      *mocks.MockEventBus
	locker   *mocks.MockAdvisoryLocker
}

func newOrderSvc(t *testing.T) (*ordersvc.Service, orderDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := orderDeps{
		repo:     mocks.NewMockOrderRepository(ctrl),
		catalog:  mocks.NewMockCatalogRepository(ctrl),
		workers:  mocks.NewMockWorkerRepository(ctrl),
		assigner: mocks.NewMockAssigner(ctrl),
		bus:      mocks.NewMockEventBus(ctrl),
		locker:   mocks.NewMockAdvisoryLocker(ctrl),
	}
	svc := ordersvc.NewService(d.repo, d.catalog, d.workers, d.assigner, d.bus, d.locker)
	return svc, d
}

// passthroughLock makes WithLock run its critical section immediately.
func passthroughLock(d orderDeps) {
	d.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ int64, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
}

func confirmedOrder() domainorder.Order {
	o := domainorder.New(uuid.New(), "Budi", "+628123", geo.Point{Lat: -6.2, Lng: 106.8}, "Jl. Sudirman 1", domainorder.UrgencyMedium, nil)
	o.Status = domainorder.StatusConfirmed
	return o
}

func TestCreate(t *testing.T) {
	svc, d := newOrderSvc(t)
	cwSvc := domaincatalog.New("Full Car Wash", domaincatalog.CategoryCarWash, 75000, 60)

	d.catalog.EXPECT().GetByID(gomock.Any(), cwSvc.ID).Return(cwSvc, nil)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domainorder.Order) (domainorder.Order, error) {
			return o, nil
		})
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	o, err := svc.Create(context.Background(), cwSvc.ID, "Budi", "+628123", geo.Point{Lat: -6.2, Lng: 106.8}, "Jl. Sudirman 1", domainorder.UrgencyHigh, nil)
	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusPending, o.Status)
	assert.Equal(t, domainorder.UrgencyHigh, o.Urgency)
}

func TestCreate_InvalidLocation(t *testing.T) {
	svc, _ := newOrderSvc(t)

	_, err := svc.Create(context.Background(), uuid.New(), "Budi", "", geo.Point{Lat: 95, Lng: 0}, "addr", domainorder.UrgencyLow, nil)
	require.Error(t, err)
}

func TestCreate_UnknownService(t *testing.T) {
	svc, d := newOrderSvc(t)
	serviceID := uuid.New()

	d.catalog.EXPECT().GetByID(gomock.Any(), serviceID).
		Return(domaincatalog.Service{}, portcatalog.ErrNotFound)

	_, err := svc.Create(context.Background(), serviceID, "Budi", "", geo.Point{Lat: -6.2, Lng: 106.8}, "addr", domainorder.UrgencyLow, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, portcatalog.ErrNotFound))
}

func TestCreate_DefaultsUrgencyToMedium(t *testing.T) {
	svc, d := newOrderSvc(t)
	cwSvc := domaincatalog.New("Full Car Wash", domaincatalog.CategoryCarWash, 75000, 60)

	d.catalog.EXPECT().GetByID(gomock.Any(), cwSvc.ID).Return(cwSvc, nil)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domainorder.Order) (domainorder.Order, error) {
			return o, nil
		})
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	o, err := svc.Create(context.Background(), cwSvc.ID, "Budi", "", geo.Point{Lat: -6.2, Lng: 106.8}, "addr", "", nil)
	require.NoError(t, err)
	assert.Equal(t, domainorder.UrgencyMedium, o.Urgency)
}

func TestConfirm_RunsAssignment(t *testing.T) {
	svc, d := newOrderSvc(t)
	o := confirmedOrder()

	d.repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, domainorder.StatusPending, domainorder.StatusConfirmed, "").Return(nil)
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	d.repo.EXPECT().GetByID(gomock.Any(), o.ID).Return(o, nil).Times(2)
	d.assigner.EXPECT().AssignOptimalWorker(gomock.Any(), gomock.Any()).Return(nil, nil)

	got, err := svc.Confirm(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestConfirm_NotPending(t *testing.T) {
	svc, d := newOrderSvc(t)
	id := uuid.New()

	d.repo.EXPECT().UpdateStatus(gomock.Any(), id, domainorder.StatusPending, domainorder.StatusConfirmed, "").
		Return(portorder.ErrNotAssignable)

	_, err := svc.Confirm(context.Background(), id)
	require.Error(t, err)
}

func TestAssign_RejectsAssignedOrder(t *testing.T) {
	svc, d := newOrderSvc(t)
	o := confirmedOrder()
	workerID := uuid.New()
	o.WorkerID = &workerID

	d.repo.EXPECT().GetByID(gomock.Any(), o.ID).Return(o, nil)

	err := svc.Assign(context.Background(), o.ID)
	require.Error(t, err)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	svc, _ := newOrderSvc(t)

	err := svc.UpdateStatus(context.Background(), uuid.New(), domainorder.StatusPending, domainorder.StatusCompleted, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transition")
}

func TestUpdateStatus_NonTerminal(t *testing.T) {
	svc, d := newOrderSvc(t)
	id := uuid.New()

	d.repo.EXPECT().UpdateStatus(gomock.Any(), id, domainorder.StatusAssigned, domainorder.StatusAccepted, "on my way").Return(nil)
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	err := svc.UpdateStatus(context.Background(), id, domainorder.StatusAssigned, domainorder.StatusAccepted, "on my way")
	require.NoError(t, err)
}

func TestUpdateStatus_CompletedReleasesWorker(t *testing.T) {
	svc, d := newOrderSvc(t)
	o := confirmedOrder()
	workerID := uuid.New()
	o.Status = domainorder.StatusInProgress
	o.WorkerID = &workerID

	released := make(chan struct{})

	d.repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, domainorder.StatusInProgress, domainorder.StatusCompleted, "").Return(nil)
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	d.repo.EXPECT().GetByID(gomock.Any(), o.ID).Return(o, nil)
	d.workers.EXPECT().Release(gomock.Any(), workerID).
		DoAndReturn(func(context.Context, uuid.UUID) error {
			close(released)
			return nil
		})

	// The post-release sweep runs on a background goroutine.
	passthroughLock(d)
	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainorder.Order{}, nil).AnyTimes()

	err := svc.UpdateStatus(context.Background(), o.ID, domainorder.StatusInProgress, domainorder.StatusCompleted, "")
	require.NoError(t, err)

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("worker was not released after completion")
	}
}

func TestUpdateStatus_CompletedFetchFailureSpendsNoTransition(t *testing.T) {
	// The pre-transition read failing must leave the CAS unspent so the
	// caller can retry and the worker still gets released.
	svc, d := newOrderSvc(t)
	o := confirmedOrder()

	d.repo.EXPECT().GetByID(gomock.Any(), o.ID).Return(domainorder.Order{}, errors.New("connection reset"))

	err := svc.UpdateStatus(context.Background(), o.ID, domainorder.StatusInProgress, domainorder.StatusCompleted, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch order before status update")
}

func TestSweepUnassigned_ContinuesPastFailures(t *testing.T) {
	// One failing order must not abort the batch.
	svc, d := newOrderSvc(t)
	passthroughLock(d)

	bad := confirmedOrder()
	good := confirmedOrder()

	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f domainorder.ListFilters) ([]domainorder.Order, error) {
			require.NotNil(t, f.Status)
			assert.Equal(t, domainorder.StatusConfirmed, *f.Status)
			assert.True(t, f.Unassigned)
			assert.True(t, f.OldestFirst)
			return []domainorder.Order{bad, good}, nil
		})

	w := domainworker.New("Agus", "", nil)
	gomock.InOrder(
		d.assigner.EXPECT().AssignOptimalWorker(gomock.Any(), gomock.Any()).Return(nil, errors.New("db timeout")),
		d.assigner.EXPECT().AssignOptimalWorker(gomock.Any(), gomock.Any()).Return(&w, nil),
	)

	err := svc.SweepUnassigned(context.Background())
	require.NoError(t, err)
}

func TestSweepUnassigned_SerializedByLock(t *testing.T) {
	svc, d := newOrderSvc(t)

	var mu sync.Mutex
	var keys []int64
	d.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, key int64, fn func(context.Context) error) error {
			mu.Lock()
			keys = append(keys, key)
			mu.Unlock()
			return fn(ctx)
		}).Times(2)
	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainorder.Order{}, nil).Times(2)

	require.NoError(t, svc.SweepUnassigned(context.Background()))
	require.NoError(t, svc.SweepUnassigned(context.Background()))

	// Both sweeps contend on the same advisory key.
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
}

func TestTrack(t *testing.T) {
	svc, d := newOrderSvc(t)
	o := confirmedOrder()

	d.repo.EXPECT().GetByTrackingCode(gomock.Any(), o.TrackingCode).Return(o, nil)

	got, err := svc.Track(context.Background(), o.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}
