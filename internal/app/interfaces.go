package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/nukesul/boody/config"
	"github.com/nukesul/boody/internal/cart"
	"github.com/nukesul/boody/internal/catalog"
	"github.com/nukesul/boody/internal/checkout"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider

	CatalogClient() *catalog.Client
	CatalogStore() *catalog.Store
	CartStore() *cart.Store
	Orders() checkout.OrderRepository
	Flow() *checkout.Flow

	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
