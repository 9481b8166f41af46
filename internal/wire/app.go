package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nandaputra/homecrew/internal/adapter/memory"
	pgdb "github.com/nandaputra/homecrew/internal/adapter/postgres"
	pgcatalog "github.com/nandaputra/homecrew/internal/adapter/postgres/catalog"
	pgeventbus "github.com/nandaputra/homecrew/internal/adapter/postgres/eventbus"
	pglocker "github.com/nandaputra/homecrew/internal/adapter/postgres/locker"
	pgorder "github.com/nandaputra/homecrew/internal/adapter/postgres/order"
	pgworker "github.com/nandaputra/homecrew/internal/adapter/postgres/worker"
	"github.com/nandaputra/homecrew/internal/adapter/rabbitmq"

	portcatalog "github.com/nandaputra/homecrew/internal/port/catalog"
	portbus "github.com/nandaputra/homecrew/internal/port/eventbus"
	portlocker "github.com/nandaputra/homecrew/internal/port/locker"
	portnotifier "github.com/nandaputra/homecrew/internal/port/notifier"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
	portworker "github.com/nandaputra/homecrew/internal/port/worker"

	assignersvc "github.com/nandaputra/homecrew/internal/service/assigner"
	catalogsvc "github.com/nandaputra/homecrew/internal/service/catalog"
	ordersvc "github.com/nandaputra/homecrew/internal/service/order"
	workersvc "github.com/nandaputra/homecrew/internal/service/worker"

	"github.com/nandaputra/homecrew/internal/transport"
)

// App holds the top-level resources needed to run and gracefully stop the
// server.
type App struct {
	Pool     *pgxpool.Pool // nil when STORAGE=memory
	Server   *http.Server
	OrderSvc *ordersvc.Service

	rabbit *rabbitmq.Notifier
}

// Build is the composition root: the only place concrete types are wired to
// their interface dependencies. STORAGE selects the one concrete storage
// implementation at startup (postgres by default, memory for development).
func Build(ctx context.Context) (*App, error) {
	var (
		pool        *pgxpool.Pool
		catalogRepo portcatalog.Repository
		workerRepo  portworker.Repository
		availRepo   portworker.AvailabilityReader
		orderRepo   portorder.Repository
		bus         portbus.EventBus
		lock        portlocker.AdvisoryLocker
	)

	switch storage := os.Getenv("STORAGE"); storage {
	case "", "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL not set")
		}
		p, err := pgdb.Connect(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		pool = p

		catalogRepo = pgcatalog.New(pool)
		wr := pgworker.New(pool)
		workerRepo, availRepo = wr, wr
		orderRepo = pgorder.New(pool)
		bus = pgeventbus.New(pool)
		lock = pglocker.New(pool)

	case "memory":
		catalogRepo = memory.NewCatalogRepository()
		wr := memory.NewWorkerRepository()
		workerRepo, availRepo = wr, wr
		orderRepo = memory.NewOrderRepository()
		bus = memory.NewEventBus()
		lock = memory.NewLocker()

	default:
		return nil, fmt.Errorf("unknown STORAGE %q", storage)
	}

	var (
		workerNotifier   portnotifier.WorkerNotifier
		customerNotifier portnotifier.CustomerNotifier
		rabbit           *rabbitmq.Notifier
	)
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		n, err := rabbitmq.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
		}
		rabbit = n
		workerNotifier, customerNotifier = n, n
	} else {
		n := memory.NewNotifier()
		workerNotifier, customerNotifier = n, n
	}

	assignSvc := assignersvc.NewService(catalogRepo, workerRepo, availRepo, orderRepo, bus, workerNotifier, customerNotifier)
	orderSvcInstance := ordersvc.NewService(orderRepo, catalogRepo, workerRepo, assignSvc, bus, lock)
	workerSvcInstance := workersvc.NewService(workerRepo, bus)
	catalogSvcInstance := catalogsvc.NewService(catalogRepo)

	router := transport.NewRouter(ctx, orderSvcInstance, workerSvcInstance, catalogSvcInstance, bus)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	slog.Info("application wired", "port", port)

	app := &App{
		Pool:     pool,
		Server:   server,
		OrderSvc: orderSvcInstance,
		rabbit:   rabbit,
	}

	startSweeper(ctx, app, bus)

	return app, nil
}

// Close releases resources owned by the app (the HTTP server is shut down
// separately by main).
func (a *App) Close() {
	if a.rabbit != nil {
		a.rabbit.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
