package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/nukesul/boody/config"
	"github.com/nukesul/boody/internal/cart"
	"github.com/nukesul/boody/internal/catalog"
	"github.com/nukesul/boody/internal/checkout"
	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/pkg/metrics"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       EventBus.Bus

	catalogClient *catalog.Client
	catalogStore  *catalog.Store
	cartStore     *cart.Store
	orderRepo     checkout.OrderRepository
	flow          *checkout.Flow
	mailer        *checkout.Mailer
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) CatalogClient() *catalog.Client { return a.catalogClient }
func (a *Application) CatalogStore() *catalog.Store   { return a.catalogStore }
func (a *Application) CartStore() *cart.Store         { return a.cartStore }
func (a *Application) Orders() checkout.OrderRepository {
	return a.orderRepo
}
func (a *Application) Flow() *checkout.Flow { return a.flow }
func (a *Application) Bus() EventBus.Bus    { return a.bus }

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.bus = EventBus.New()

	a.catalogClient = catalog.NewClient(cfg.Remote)
	a.catalogStore = catalog.NewStore(a.catalogClient)
	a.cartStore = cart.NewStore(cart.NewGormRepository(a.gormDB), a.catalogStore)
	a.orderRepo = checkout.NewGormOrderRepository(a.gormDB)
	a.flow = checkout.NewFlow(a.cartStore, a.catalogClient, a.catalogClient,
		a.orderRepo, a.bus, cfg.Checkout.DeliveryCost)

	a.mailer = checkout.NewMailer(cfg.Smtp)
	if err := a.bus.SubscribeAsync(checkout.TopicOrderPlaced, a.mailer.OnOrderPlaced, false); err != nil {
		zap.S().Errorf("failed to subscribe order mailer: %v", err)
	}

	// first catalog load; the refresh job takes over afterwards
	go a.warmCatalog()

	a.initJob()
}

// warmCatalog retries the initial load so a brief upstream outage at
// boot does not leave the storefront empty until the next cron tick.
func (a *Application) warmCatalog() {
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := a.catalogStore.Refresh(ctx)
		cancel()
		if err == nil {
			return
		}
		zap.L().Warn("initial catalog load failed",
			zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * 5 * time.Second)
	}
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	_ = metrics.Close()
	_ = zap.L().Sync()
}
