package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thermo_dashboard/internal/devicesim"
	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/server"

	"github.com/spf13/viper"
)

const (
	defaultSimTick  = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfgErr := loadConfig()

	log := logger.Get(viper.GetString("log.level"))
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	dev := devicesim.New(devicesim.Config{
		StartEmpty: viper.GetBool("devicesim.start_empty"),
		MaxHistory: viper.GetInt("devicesim.max_history"),
		Seed:       viper.GetInt64("devicesim.seed"),
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tick := viper.GetDuration("devicesim.tick")
	if tick <= 0 {
		tick = defaultSimTick
	}
	go dev.Run(ctx, tick, log)

	srv := &server.Server{}
	port := viper.GetString("devicesim.port")
	go func() {
		if err := srv.Run(port, devicesim.NewAPI(dev, log).Routes()); err != nil {
			log.Fatalw("error starting simulator", "err", err)
		}
	}()
	log.Infow("device simulator started", "port", port, "tick", tick)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down simulator...")
	cancel()

	sctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Errorw("simulator forced to shutdown", "err", err)
	}
	_ = log.Sync()
}

func loadConfig() error {
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("devicesim.port", "8000")
	viper.SetDefault("devicesim.tick", defaultSimTick.String())
	viper.SetDefault("devicesim.seed", 1)
	viper.SetDefault("devicesim.max_history", devicesim.DefaultHistory)

	viper.SetEnvPrefix("THERMO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}
