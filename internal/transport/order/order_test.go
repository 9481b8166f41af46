package order_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domaincatalog "github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	"github.com/nandaputra/homecrew/internal/mocks"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
	ordersvc "github.com/nandaputra/homecrew/internal/service/order"
	transportorder "github.com/nandaputra/homecrew/internal/transport/order"
)

func init() { gin.SetMode(gin.TestMode) }

type orderDeps struct {
	repo     *mocks.MockOrderRepository
	catalog  *mocks.MockCatalogRepository
	workers  *mocks.MockWorkerRepository
	assigner *mocks.MockAssigner
	bus      *mocks.MockEventBus
	locker   *mocks.MockAdvisoryLocker
}

func newRouter(t *testing.T) (*gin.Engine, orderDeps) {
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

	r := gin.New()
	transportorder.Register(r.Group("/orders"), svc)
	return r, d
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrder(t *testing.T) {
	r, d := newRouter(t)
	cwSvc := domaincatalog.New("Full Car Wash", domaincatalog.CategoryCarWash, 75000, 60)

	d.catalog.EXPECT().GetByID(gomock.Any(), cwSvc.ID).Return(cwSvc, nil)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domainorder.Order) (domainorder.Order, error) {
			return o, nil
		})
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w := doJSON(t, r, http.MethodPost, "/orders/", map[string]any{
		"service_id":     cwSvc.ID,
		"customer_name":  "Budi",
		"customer_phone": "+628123456789",
		"lat":            -6.2088,
		"lng":            106.8456,
		"address":        "Jl. Sudirman 1",
		"urgency":        "high",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var got domainorder.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domainorder.StatusPending, got.Status)
	assert.NotEmpty(t, got.TrackingCode)
}

func TestCreateOrder_MissingFields(t *testing.T) {
	r, _ := newRouter(t)

	// lat/lng are pointer-bound so an explicit 0 is accepted but absence is not.
	w := doJSON(t, r, http.MethodPost, "/orders/", map[string]any{
		"service_id":    uuid.New(),
		"customer_name": "Budi",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmOrder_Assigned(t *testing.T) {
	r, d := newRouter(t)
	o := domainorder.New(uuid.New(), "Budi", "+628123", geo.Point{Lat: -6.2, Lng: 106.8}, "addr", domainorder.UrgencyMedium, nil)
	workerID := uuid.New()

	d.repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, domainorder.StatusPending, domainorder.StatusConfirmed, "").Return(nil)
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	confirmed := o
	confirmed.Status = domainorder.StatusConfirmed
	assigned := confirmed
	assigned.Status = domainorder.StatusAssigned
	assigned.WorkerID = &workerID

	chosen := domainworker.New("Agus", "", nil)
	gomock.InOrder(
		d.repo.EXPECT().GetByID(gomock.Any(), o.ID).Return(confirmed, nil),
		d.assigner.EXPECT().AssignOptimalWorker(gomock.Any(), gomock.Any()).Return(&chosen, nil),
		d.repo.EXPECT().GetByID(gomock.Any(), o.ID).Return(assigned, nil),
	)

	w := doJSON(t, r, http.MethodPost, "/orders/"+o.ID.String()+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `"assigned"`, string(resp["assignment"]))
}

func TestConfirmOrder_NoMatchLeavesPending(t *testing.T) {
	r, d := newRouter(t)
	o := domainorder.New(uuid.New(), "Budi", "+628123", geo.Point{Lat: -6.2, Lng: 106.8}, "addr", domainorder.UrgencyMedium, nil)

	d.repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, domainorder.StatusPending, domainorder.StatusConfirmed, "").Return(nil)
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	confirmed := o
	confirmed.Status = domainorder.StatusConfirmed
	d.repo.EXPECT().GetByID(gomock.Any(), o.ID).Return(confirmed, nil).Times(2)
	d.assigner.EXPECT().AssignOptimalWorker(gomock.Any(), gomock.Any()).Return(nil, nil)

	w := doJSON(t, r, http.MethodPost, "/orders/"+o.ID.String()+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `"pending"`, string(resp["assignment"]))
}

func TestConfirmOrder_InvalidID(t *testing.T) {
	r, _ := newRouter(t)
	w := doJSON(t, r, http.MethodPost, "/orders/not-a-uuid/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	r, d := newRouter(t)
	id := uuid.New()

	d.repo.EXPECT().GetByID(gomock.Any(), id).Return(domainorder.Order{}, portorder.ErrNotFound)

	w := doJSON(t, r, http.MethodGet, "/orders/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackOrder(t *testing.T) {
	r, d := newRouter(t)
	o := domainorder.New(uuid.New(), "Budi", "+628123", geo.Point{Lat: -6.2, Lng: 106.8}, "addr", domainorder.UrgencyMedium, nil)

	d.repo.EXPECT().GetByTrackingCode(gomock.Any(), o.TrackingCode).Return(o, nil)

	w := doJSON(t, r, http.MethodGet, "/orders/track/"+o.TrackingCode, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got domainorder.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, o.ID, got.ID)
}

func TestUpdateOrderStatus_Conflict(t *testing.T) {
	r, _ := newRouter(t)
	id := uuid.New()

	// pending→completed is not a legal transition; rejected before storage.
	w := doJSON(t, r, http.MethodPatch, "/orders/"+id.String(), map[string]any{
		"status_from": "pending",
		"status_to":   "completed",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListOrders_FilterParsing(t *testing.T) {
	r, d := newRouter(t)

	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f domainorder.ListFilters) ([]domainorder.Order, error) {
			require.NotNil(t, f.Status)
			assert.Equal(t, domainorder.StatusConfirmed, *f.Status)
			assert.True(t, f.Unassigned)
			return nil, nil
		})

	w := doJSON(t, r, http.MethodGet, "/orders/?status=confirmed&unassigned=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	// nil slice is rendered as an empty JSON array.
	assert.JSONEq(t, `[]`, w.Body.String())
}
