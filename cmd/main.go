package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smarthome_dw/internal/handlers"
	"smarthome_dw/internal/logger"
	"smarthome_dw/internal/repository"
	"smarthome_dw/internal/server"
	"smarthome_dw/internal/service"
	"smarthome_dw/internal/thingspeak"

	"github.com/spf13/viper"
)

func main() {
	// load config.yml first; the log level lives there
	if err := loadConfig(); err != nil {
		fallback := logger.Get(logger.InfoLevel)
		fallback.Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log.level"))

	// open DB (creates schema if missing)
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	feed := newFeedClient()
	services := service.NewService(repos, feed, log, serviceConfig())
	apiHandler := handlers.NewHandler(services, log)

	// optionally start the background ETL loop
	if viper.GetBool("etl.autostart") {
		if err := services.Scheduler.Start(); err != nil {
			log.Errorw("scheduler_autostart_failed", "err", err)
		} else {
			log.Infow("scheduler started", "interval_s", viper.GetInt("etl.interval_s"))
		}
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, services, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "smarthome_dw.db")
		dbPath = "smarthome_dw.db"
	}
	return repository.InitDB(dbPath)
}

// newFeedClient builds the ThingSpeak client from configuration.
func newFeedClient() *thingspeak.Client {
	timeout := time.Duration(viper.GetInt("thingspeak.timeout_s")) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	results := viper.GetInt("thingspeak.results")
	if results <= 0 {
		results = 8000
	}
	return thingspeak.NewClient(
		viper.GetString("thingspeak.base_url"),
		viper.GetString("thingspeak.channel_id"),
		viper.GetString("thingspeak.read_api_key"),
		results,
		timeout,
	)
}

// serviceConfig snapshots the analysis/ETL knobs for the service layer.
func serviceConfig() service.Config {
	return service.Config{
		Fields:                viper.GetStringSlice("thingspeak.fields"),
		WasteStreakTarget:     viper.GetInt("analysis.waste_streak_target"),
		HighEnergyThresholdWh: viper.GetFloat64("analysis.high_energy_threshold_wh"),
		ConsumptionPolicy:     viper.GetString("analysis.policy"),
		ChunkSize:             viper.GetInt("analysis.chunk_size"),
		ETLInterval:           time.Duration(viper.GetInt("etl.interval_s")) * time.Second,
		SigningKey:            viper.GetString("auth.signing_key"),
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the background ETL loop if it is running
	if err := services.Scheduler.Stop(); err != nil && !errors.Is(err, service.ErrSchedulerStopped) {
		log.Errorw("scheduler_stop_failed", "err", err)
	}

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
