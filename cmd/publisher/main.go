package main

import (
	"encoding/json"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nandanugg/linewatch/config"
	"github.com/nandanugg/linewatch/module/core/domain"
	"github.com/nandanugg/linewatch/module/core/service"
)

type positionMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

var (
	cfg *config.Config

	originLat  float64
	originLon  float64
	bearing    float64
	stepMeters float64
	maxMeters  float64
	jitter     float64
)

var rootCmd = &cobra.Command{
	Use:   "publisher <interval_seconds>",
	Short: "Publish a simulated walk away from an origin and back over MQTT",
	Args:  cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c
		return config.InitLogger(cfg.Log)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		intervalSec, err := strconv.Atoi(args[0])
		if err != nil || intervalSec <= 0 {
			return eris.New("interval must be a positive integer")
		}
		if stepMeters <= 0 || maxMeters <= 0 {
			return eris.New("step and max must be positive")
		}
		return run(time.Duration(intervalSec) * time.Second)
	},
}

func run(interval time.Duration) error {
	log := zap.L()

	client, err := config.DialMQTT(cfg.MQTT.Broker, "linewatch-simulator", nil)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	origin := domain.Position{Lat: originLat, Lon: originLon}
	log.Info("publishing simulated walk",
		zap.String("broker", cfg.MQTT.Broker),
		zap.String("topic", cfg.MQTT.Topic),
		zap.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dist, dir := 0.0, 1.0
	for range ticker.C {
		p := service.Offset(origin, bearing, dist)
		// GPS noise, roughly jitter meters either way
		p = service.Offset(p, rand.Float64()*360, rand.Float64()*jitter)

		msg := positionMessage{
			Latitude:  p.Lat,
			Longitude: p.Lon,
			Accuracy:  jitter,
			Timestamp: time.Now().Unix(),
		}
		payload, _ := json.Marshal(msg)

		token := client.Publish(cfg.MQTT.Topic, byte(cfg.MQTT.QoS), false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Warn("publish failed", zap.Error(err))
		} else {
			log.Info("published", zap.Float64("distance_meters", dist), zap.ByteString("payload", payload))
		}

		dist += dir * stepMeters
		if dist >= maxMeters {
			dist, dir = maxMeters, -1
		} else if dist <= 0 {
			dist, dir = 0, 1
		}
	}
	return nil
}

func main() {
	f := rootCmd.Flags()
	f.Float64Var(&originLat, "lat", -6.2088, "origin latitude")
	f.Float64Var(&originLon, "lon", 106.8456, "origin longitude")
	f.Float64Var(&bearing, "bearing", 90, "walking direction in degrees from north")
	f.Float64Var(&stepMeters, "step", 10, "meters moved per sample")
	f.Float64Var(&maxMeters, "max", 80, "turn back after this many meters")
	f.Float64Var(&jitter, "jitter", 3, "random position noise in meters")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
