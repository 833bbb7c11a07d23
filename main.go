package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nukesul/boody/config"
	"github.com/nukesul/boody/internal/adminapi"
	"github.com/nukesul/boody/internal/app"
	"github.com/nukesul/boody/internal/storeapi"
	"github.com/nukesul/boody/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, use with caution")
)

func printVersion() {
	fmt.Println("boody storefront gateway")
}

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		printVersion()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	cfg.InitDirs()

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		os.Exit(0)
	}

	webserver.Init(cfg)
	storeapi.Init(application.CatalogClient(), application.CatalogStore(),
		application.CartStore(), application.Flow())
	adminapi.Init(cfg, application.CatalogClient(), application.CatalogStore(),
		application.Orders())

	errchan := make(chan error, 1)
	go func() {
		errchan <- webserver.Listen()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errchan:
		if err != nil {
			zap.S().Fatalf("webserver error: %v", err)
		}
	case sig := <-quit:
		zap.S().Infof("received signal %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := webserver.Shutdown(ctx); err != nil {
			zap.S().Errorf("shutdown error: %v", err)
		}
	}
}
