package main

import (
	"fmt"
	"net/http"
	"time"

	"schedrouter/app/handler"
	"schedrouter/app/router"
	"schedrouter/internal/service"
	"schedrouter/pkg/config"
	"schedrouter/pkg/logger"
	"schedrouter/pkg/store/cached"
	memorystore "schedrouter/pkg/store/memory"
	mysqlstore "schedrouter/pkg/store/mysql"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.Sync()
	})
	return nil
}

// initStore initializes the routing store, optionally wrapped in the Redis
// read-through cache
func (app *Application) initStore() error {
	switch app.config.Store.Driver {
	case "memory":
		app.store = memorystore.New()
		logger.InfoCtx(app.ctx, "Using in-memory store, records will not survive a restart")
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			app.config.MySQL.User,
			app.config.MySQL.Password,
			app.config.MySQL.Host,
			app.config.MySQL.Port,
			app.config.MySQL.Database,
		)

		repo, err := mysqlstore.NewRepository(dsn)
		if err != nil {
			return err
		}
		if err := repo.Migrate(app.ctx); err != nil {
			return fmt.Errorf("failed to migrate routing tables: %w", err)
		}

		app.store = repo
		app.registerCleanup(func() {
			repo.Close()
			logger.InfoCtx(app.ctx, "MySQL connection has been closed")
		})
	default:
		return fmt.Errorf("unknown store driver %q", app.config.Store.Driver)
	}

	if app.config.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     app.config.Redis.Addr,
			Password: app.config.Redis.Password,
			DB:       app.config.Redis.DB,
		})
		if err := client.Ping(app.ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.registerCleanup(func() {
			client.Close()
			logger.InfoCtx(app.ctx, "Redis connection has been closed")
		})

		app.store = cached.New(app.store, client, time.Duration(app.config.Redis.SchedulerTTL)*time.Second)
		logger.InfoCtx(app.ctx, "Redis assignment cache enabled")
	}

	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	app.routerService = service.NewRouterService(app.store, &app.config.Router)
	app.bootstrapService = service.NewBootstrapService(app.store, &app.config.Router)
	return nil
}

// initSchedulers reconciles the declarative scheduler list into the
// registry. Router mode cannot start without it.
func (app *Application) initSchedulers() error {
	if app.config.Router.Mode != service.ModeRouter {
		logger.InfoCtx(app.ctx, "Not in router mode, skipping scheduler bootstrap")
		return nil
	}
	return app.bootstrapService.Init(app.ctx)
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.routeHandler = handler.NewRouteHandler(app.routerService)
	app.registryHandler = handler.NewRegistryHandler(app.store)
	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	r := router.NewRouter(app.routeHandler, app.registryHandler)

	if app.config.Server.Mode != "" {
		gin.SetMode(app.config.Server.Mode)
	}

	app.ginEngine = gin.New()
	r.Setup(app.ginEngine)

	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	}

	return nil
}
