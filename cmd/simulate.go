package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/evmobility/urbanev/config"
	"github.com/evmobility/urbanev/core/sim"
	"github.com/evmobility/urbanev/infra/logger"
	"github.com/evmobility/urbanev/infra/metrics"
	"github.com/evmobility/urbanev/infra/mqtt"
	"github.com/evmobility/urbanev/pkg/export"
)

var (
	scenarioPath string
	exportPath   string
	exportFormat string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a charging scenario and report session totals",
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "scenario.yaml", "scenario file")
	simulateCmd.Flags().StringVarP(&exportPath, "out", "o", "", "write session records to this file")
	simulateCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv or json")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("simulate")
	cfg.Normalize(log)

	scenario, err := sim.LoadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	sink, err := metrics.NewSink(cfg.Metrics, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}

	runner := sim.NewRunner(scenario, cfg.Charging, cfg.Scoring, sink, log)

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt publisher: %w", err)
		}
		defer pub.Disconnect()
		sub := runner.Bus().Subscribe()
		go mqtt.Forward(ctx, pub, sub, log)
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	log.Infof("processed %d events, %d sessions, %.2f kWh charged",
		summary.EventsProcessed, summary.Sessions, summary.TotalEnergyKWh)
	for name, sum := range summary.ComponentSums {
		log.Infof("score component %s: %.3f", name, sum)
	}

	if exportPath != "" {
		if err := writeExport(exportPath, exportFormat, runner); err != nil {
			return err
		}
		log.Infof("session records written to %s", exportPath)
	}
	return nil
}

func writeExport(path, format string, runner *sim.Runner) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	entries := runner.SessionLog().Entries()
	switch format {
	case "csv":
		return export.WriteCSV(f, entries)
	case "json":
		return export.WriteJSON(f, entries)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
