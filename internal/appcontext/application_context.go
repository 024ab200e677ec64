package appcontext

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/config"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/geo"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/producer"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	redis_cache "github.com/RoyceAzure/lab/rj_redis/pkg/cache/redis"
	"github.com/RoyceAzure/lab/rj_redis/pkg/redis_client"
	"github.com/rs/zerolog"
)

/*
ApplicationContext 一個裝置狀態對應一份，持有所有 store
取代全域單例，測試時可各自建立
*/
type ApplicationContext struct {
	Cf                  *config.Config
	Logger              zerolog.Logger
	Store               kv.Store
	DbDao               *db.DbDao
	Catalog             *catalog.Catalog
	Geolocator          geo.Geolocator
	EventProducer       *producer.OrderEventProducer
	SessionService      service.ISessionService
	CartService         service.ICartService
	OrderService        service.IOrderService
	NotificationService service.INotificationService
	LocationService     service.ILocationService
	CheckoutService     service.ICheckoutService

	closers []func() error
}

type Option func(*ApplicationContext)

// WithStore 使用外部提供的 store，忽略 storage 設定
func WithStore(store kv.Store) Option {
	return func(app *ApplicationContext) {
		app.Store = store
	}
}

func WithGeolocator(g geo.Geolocator) Option {
	return func(app *ApplicationContext) {
		app.Geolocator = g
	}
}

func NewApplicationContext(ctx context.Context, cf *config.Config, logger zerolog.Logger, opts ...Option) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf:     cf,
		Logger: logger,
	}
	for _, opt := range opts {
		opt(&app)
	}

	if err := app.Init(ctx); err != nil {
		if closeErr := app.close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to release resources after init error")
		}
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	steps := []func(ctx context.Context) error{
		app.setUpStore,
		app.setUpCatalog,
		app.setUpGeolocator,
		app.setUpSessionService,
		app.setUpCartService,
		app.setUpNotificationService,
		app.setUpOrderService,
		app.setUpLocationService,
		app.setUpCheckoutService,
		app.setUpEventProducer,
		app.restore,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (app *ApplicationContext) setUpStore(ctx context.Context) error {
	if app.Store != nil {
		return nil
	}
	app.Logger.Info().Str("driver", app.Cf.Storage.Driver).Msg("Start setup kv store")

	switch app.Cf.Storage.Driver {
	case "", "memory":
		app.Store = kv.NewMemoryStore()
	case "redis":
		rc := app.Cf.Storage.Redis
		// client 由 redis_client 依 address 在 process 內共用，不隨 ApplicationContext 關閉
		client, err := redis_client.GetRedisClient(rc.Addr,
			redis_client.WithPassword(rc.Password),
			redis_client.WithDB(rc.DB),
			redis_client.WithPoolSize(rc.PoolSize),
		)
		if err != nil {
			return fmt.Errorf("create redis client %s: %w", rc.Addr, err)
		}
		repo := redis_repo.NewKVRedisRepo(redis_cache.NewRedisCache(client, rc.Prefix))
		if err := repo.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis %s: %w", rc.Addr, err)
		}
		app.Store = repo
	case db.DriverPostgres, db.DriverMySQL:
		dc := app.Cf.Storage.DB
		conn, err := db.GetDbConn(db.ConnConfig{
			Driver:   app.Cf.Storage.Driver,
			Host:     dc.Host,
			Port:     dc.Port,
			User:     dc.User,
			Password: dc.Password,
			DBName:   dc.Name,
		})
		if err != nil {
			return fmt.Errorf("connect %s: %w", app.Cf.Storage.Driver, err)
		}
		app.DbDao = db.NewDbDao(conn)
		app.closers = append(app.closers, app.DbDao.Close)
		if err := app.DbDao.InitMigrate(); err != nil {
			return fmt.Errorf("migrate kv records: %w", err)
		}
		app.Store = db.NewKVDBRepo(app.DbDao)
	default:
		return fmt.Errorf("unsupported storage driver %q", app.Cf.Storage.Driver)
	}

	app.Logger.Info().Msg("Finish setup kv store")
	return nil
}

func (app *ApplicationContext) setUpCatalog(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup catalog")
	c, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	app.Catalog = c
	app.Logger.Info().Int("stores", len(c.Stores())).Msg("Finish setup catalog")
	return nil
}

func (app *ApplicationContext) setUpGeolocator(ctx context.Context) error {
	if app.Geolocator != nil {
		return nil
	}
	lc := app.Cf.Location
	g, err := geo.NewGeolocator(lc.Provider, lc.Static.Lat, lc.Static.Lng, lc.Static.Accuracy)
	if err != nil {
		return err
	}
	app.Geolocator = g
	return nil
}

func (app *ApplicationContext) setUpSessionService(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup session service")
	app.SessionService = service.NewSessionService(app.Store, app.Catalog, service.SessionConfig{
		AuthDelay: app.Cf.Session.AuthDelay,
	}, app.Logger)
	app.Logger.Info().Msg("Finish setup session service")
	return nil
}

func (app *ApplicationContext) setUpCartService(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup cart service")
	percent, min := app.Cf.Cart.Fee()
	app.CartService = service.NewCartService(app.Store, service.CartConfig{
		ServiceFeePercent: percent,
		MinServiceFee:     min,
	}, app.Logger)
	app.Logger.Info().Msg("Finish setup cart service")
	return nil
}

func (app *ApplicationContext) setUpNotificationService(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup notification service")
	app.NotificationService = service.NewNotificationService(app.Store, app.Catalog, app.Logger)
	app.Logger.Info().Msg("Finish setup notification service")
	return nil
}

func (app *ApplicationContext) setUpOrderService(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup order service")
	orderService := service.NewOrderService(app.Store, app.Catalog, service.OrderConfig{
		ProgressInterval:  app.Cf.Order.ProgressInterval,
		EstimatedDelivery: app.Cf.Order.EstimatedDelivery,
	}, app.Logger)
	if app.Cf.Order.NotifyStatusChanges {
		orderService.AddObserver(service.NewOrderStatusNotifier(app.NotificationService, app.Logger))
	}
	app.OrderService = orderService
	app.Logger.Info().Msg("Finish setup order service")
	return nil
}

func (app *ApplicationContext) setUpLocationService(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup location service")
	app.LocationService = service.NewLocationService(app.Store, app.Geolocator, app.Catalog.DemoLocation(), service.LocationConfig{
		Timeout: app.Cf.Location.Timeout,
		MaxAge:  app.Cf.Location.MaxAge,
	}, app.Logger)
	app.Logger.Info().Msg("Finish setup location service")
	return nil
}

func (app *ApplicationContext) setUpCheckoutService(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup checkout service")
	app.CheckoutService = service.NewCheckoutService(app.CartService, app.OrderService, app.NotificationService, app.Catalog, service.CheckoutConfig{
		PaymentDelay: app.Cf.Checkout.PaymentDelay,
	}, app.Logger)
	app.Logger.Info().Msg("Finish setup checkout service")
	return nil
}

func (app *ApplicationContext) setUpEventProducer(ctx context.Context) error {
	if !app.Cf.Kafka.Enabled {
		return nil
	}
	app.Logger.Info().Strs("brokers", app.Cf.Kafka.Brokers).Str("topic", app.Cf.Kafka.Topic).Msg("Start setup order event producer")
	writer := producer.NewKafkaWriter(producer.Config{
		Brokers:      app.Cf.Kafka.Brokers,
		Topic:        app.Cf.Kafka.Topic,
		BatchTimeout: app.Cf.Kafka.BatchTimeout,
	}, app.Logger)
	app.EventProducer = producer.NewOrderEventProducer(writer, app.Logger)
	app.closers = append(app.closers, app.EventProducer.Close)
	app.OrderService.AddObserver(app.EventProducer)
	app.Logger.Info().Msg("Finish setup order event producer")
	return nil
}

// restore 依序還原各 store 的持久化狀態
func (app *ApplicationContext) restore(ctx context.Context) error {
	app.Logger.Info().Msg("Start restore persisted state")
	restorers := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"session", app.SessionService.Restore},
		{"cart", app.CartService.Restore},
		{"notifications", app.NotificationService.Restore},
		{"orders", app.OrderService.Restore},
		{"location", app.LocationService.Restore},
	}
	for _, r := range restorers {
		if err := r.fn(ctx); err != nil {
			return fmt.Errorf("restore %s: %w", r.name, err)
		}
	}
	app.Logger.Info().Msg("Finish restore persisted state")
	return nil
}

// Shutdown 停止訂單推進後再關閉外部連線
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	var errs []error
	if app.OrderService != nil {
		if err := app.OrderService.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown order service: %w", err))
		}
	}
	if err := app.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// close 反向關閉
func (app *ApplicationContext) close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
