package transport

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/nandaputra/homecrew/internal/domain/event"
	porteventbus "github.com/nandaputra/homecrew/internal/port/eventbus"
	catalogsvc "github.com/nandaputra/homecrew/internal/service/catalog"
	ordersvc "github.com/nandaputra/homecrew/internal/service/order"
	workersvc "github.com/nandaputra/homecrew/internal/service/worker"

	cataloghandler "github.com/nandaputra/homecrew/internal/transport/catalog"
	orderhandler "github.com/nandaputra/homecrew/internal/transport/order"
	workerhandler "github.com/nandaputra/homecrew/internal/transport/worker"
	wshandler "github.com/nandaputra/homecrew/internal/transport/ws"
)

func NewRouter(
	ctx context.Context,
	orderSvc *ordersvc.Service,
	workerSvc *workersvc.Service,
	catalogSvc *catalogsvc.Service,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	api := r.Group("/api")

	orderhandler.Register(api.Group("/orders"), orderSvc)
	workerhandler.Register(api.Group("/workers"), workerSvc)
	cataloghandler.Register(api.Group("/services"), catalogSvc)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	// Bridge: one subscription per domain channel. All events within a
	// channel are forwarded to WS clients; event.Type in the payload lets the
	// client filter. WorkerLocation is excluded — too chatty for browsers and
	// it carries no actionable state.
	for _, ch := range []event.Channel{
		event.ChannelOrder,
		event.ChannelWorker,
	} {
		c := ch
		if _, err := eventBus.Subscribe(ctx, c, func(_ context.Context, e event.Event) {
			if e.Type == event.TypeWorkerLocation {
				return
			}
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	return r
}
