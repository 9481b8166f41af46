package worker_test

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

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	"github.com/nandaputra/homecrew/internal/mocks"
	portworker "github.com/nandaputra/homecrew/internal/port/worker"
	workersvc "github.com/nandaputra/homecrew/internal/service/worker"
	transportworker "github.com/nandaputra/homecrew/internal/transport/worker"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockWorkerRepository, *mocks.MockEventBus) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockWorkerRepository(ctrl)
	bus := mocks.NewMockEventBus(ctrl)
	svc := workersvc.NewService(repo, bus)

	r := gin.New()
	transportworker.Register(r.Group("/workers"), svc)
	return r, repo, bus
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

func TestRegisterWorker(t *testing.T) {
	r, repo, _ := newRouter(t)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w domainworker.Worker) (domainworker.Worker, error) {
			return w, nil
		})

	w := doJSON(t, r, http.MethodPost, "/workers/register", map[string]any{
		"name":            "Agus",
		"phone":           "+628111222333",
		"specializations": []string{"car_wash", "detailing"},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var got domainworker.Worker
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domainworker.AvailabilityOffline, got.Availability)
	assert.ElementsMatch(t, []catalog.Category{catalog.CategoryCarWash, catalog.CategoryDetailing}, got.Specializations)
}

func TestRegisterWorker_UnknownSpecialization(t *testing.T) {
	r, _, _ := newRouter(t)

	w := doJSON(t, r, http.MethodPost, "/workers/register", map[string]any{
		"name":            "Agus",
		"phone":           "+62811",
		"specializations": []string{"plumbing"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetAvailability(t *testing.T) {
	r, repo, bus := newRouter(t)
	id := uuid.New()

	repo.EXPECT().UpdateAvailability(gomock.Any(), id, domainworker.AvailabilityAvailable).Return(nil)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w := doJSON(t, r, http.MethodPatch, "/workers/"+id.String()+"/availability", map[string]any{
		"availability": "available",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetAvailability_UnknownWorker(t *testing.T) {
	r, repo, _ := newRouter(t)
	id := uuid.New()

	repo.EXPECT().UpdateAvailability(gomock.Any(), id, domainworker.AvailabilityAvailable).
		Return(portworker.ErrNotFound)

	w := doJSON(t, r, http.MethodPatch, "/workers/"+id.String()+"/availability", map[string]any{
		"availability": "available",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateLocation(t *testing.T) {
	r, repo, bus := newRouter(t)
	id := uuid.New()

	repo.EXPECT().UpdateLocation(gomock.Any(), id, gomock.Any(), gomock.Any()).Return(nil)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w := doJSON(t, r, http.MethodPut, "/workers/"+id.String()+"/location", map[string]any{
		"lat": -6.2088,
		"lng": 106.8456,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateLocation_OutOfRange(t *testing.T) {
	r, _, _ := newRouter(t)
	id := uuid.New()

	w := doJSON(t, r, http.MethodPut, "/workers/"+id.String()+"/location", map[string]any{
		"lat": 120.0,
		"lng": 106.8,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListWorkers_Filters(t *testing.T) {
	r, repo, _ := newRouter(t)

	repo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f domainworker.ListFilters) ([]domainworker.Worker, error) {
			require.NotNil(t, f.Availability)
			assert.Equal(t, domainworker.AvailabilityAvailable, *f.Availability)
			require.NotNil(t, f.Category)
			assert.Equal(t, catalog.CategoryLawnCare, *f.Category)
			return nil, nil
		})

	w := doJSON(t, r, http.MethodGet, "/workers/?availability=available&category=lawn_care", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
