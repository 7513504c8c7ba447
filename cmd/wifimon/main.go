/*
 * Copyright 2026 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/carverauto/wifimon/pkg/adapter"
	"github.com/carverauto/wifimon/pkg/config"
	"github.com/carverauto/wifimon/pkg/lifecycle"
	"github.com/carverauto/wifimon/pkg/logger"
	"github.com/carverauto/wifimon/pkg/models"
	"github.com/carverauto/wifimon/pkg/monitor"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

const defaultReportInterval = time.Minute

// Config is the daemon configuration: adapter selection and pressure
// thresholds on top of the engine config.
type Config struct {
	Interface               string          `json:"interface"` // empty auto-detects
	StabilityReportInterval models.Duration `json:"stability_report_interval"`
	CPUPressureThreshold    float64         `json:"cpu_pressure_threshold"`
	LoadPerCoreThreshold    float64         `json:"load_per_core_threshold"`

	monitor.Config
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/wifimon/wifimon.json", "Path to wifimon config file")
	iface := flag.String("interface", "", "Wireless interface to monitor (overrides config)")
	flag.Parse()

	ctx := context.Background()

	var cfg Config

	if *configPath != "" {
		if _, err := os.Stat(*configPath); err == nil {
			loader := config.NewLoader(nil)
			if err := loader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
				return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
			}
		}
	}

	if *iface != "" {
		cfg.Interface = *iface
	}

	monLogger, err := logger.NewComponent("wifimon", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	reader, err := adapter.NewProcReader(cfg.Interface)
	if err != nil {
		return fmt.Errorf("failed to open wireless adapter: %w", err)
	}

	monLogger.Info().Str("interface", reader.Interface()).Msg("Monitoring wireless interface")

	mon, err := monitor.New(&cfg.Config, reader, nil, monLogger)
	if err != nil {
		return err
	}

	mon.SetPressureSampler(monitor.NewCPUPressureSampler(cfg.CPUPressureThreshold, cfg.LoadPerCoreThreshold))
	mon.Subscribe(&logSubscriber{logger: monLogger})

	reportInterval := time.Duration(cfg.StabilityReportInterval)
	if reportInterval == 0 {
		reportInterval = defaultReportInterval
	}

	stopReport := make(chan struct{})
	go reportLoop(mon, monLogger, reportInterval, stopReport)

	defer close(stopReport)

	return lifecycle.Run(ctx, &lifecycle.Options{
		ServiceName: "wifimon",
		Service:     mon,
		Logger:      monLogger,
	})
}

// reportLoop periodically logs the derived stability and connection metrics.
func reportLoop(mon *monitor.Monitor, log logger.Logger, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			report := mon.Stability()
			stats := mon.ConnectionStats()

			log.Info().
				Float64("score", report.Score).
				Str("level", string(report.Level)).
				Strs("issues", report.Issues).
				Int("total_events", stats.TotalEvents).
				Float64("success_rate", stats.SuccessRate).
				Float64("stability_ratio", stats.StabilityRatio).
				Msg("Connection stability report")
		}
	}
}

// logSubscriber writes status transitions to the structured log. It stands
// in for the presentation layer this daemon does not carry.
type logSubscriber struct {
	logger logger.Logger
}

func (s *logSubscriber) OnStatusChanged(status models.NetworkStatus) {
	ev := s.logger.Info().Str("state", string(status.State))

	if status.Info != nil {
		ev = ev.Str("ssid", status.Info.SSID).Bool("secure", status.Info.Secure)

		if status.Info.SignalStrength != nil {
			ev = ev.Int("signal_dbm", *status.Info.SignalStrength)
		}
	}

	if status.Error != nil {
		ev = ev.Str("error_kind", string(status.Error.Kind)).
			Str("suggestion", status.Error.RecoverySuggestion())
	}

	ev.Msg("Network status changed")
}

func (s *logSubscriber) OnConnected(info *models.NetworkInfo) {
	s.logger.Info().Str("ssid", info.SSID).Msg("Network connected")
}

func (s *logSubscriber) OnDisconnected() {
	s.logger.Info().Msg("Network disconnected")
}
