package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"agro-collector/cache"
	"agro-collector/confs"
	"agro-collector/db"
	"agro-collector/history"
	"agro-collector/repositories"
	"agro-collector/services"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect every configured sensor once and print the report",
	Long: `Collect every sensor that has an endpoint configured, store the readings,
raise threshold notifications and print the per-sensor outcome.

Examples:
  collectorctl run
  collectorctl run --json
  collectorctl run --sqlite ./agro.db -v`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw JSON report")
}

// collectorSession bundles what the run and watch commands need.
type collectorSession struct {
	database  db.Database
	store     history.Store
	scheduler *services.Scheduler
	sensors   repositories.SensorRepository
}

func openSession(cfg *confs.Config) (*collectorSession, error) {
	database, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	var opts []services.CollectorOption
	store := history.FromConfig(cfg.Influx)
	if store != nil {
		opts = append(opts, services.WithRecorder(store))
	}
	collector := services.NewDatabaseCollector(database, cfg.Collector, logger, opts...)

	return &collectorSession{
		database:  database,
		store:     store,
		scheduler: services.NewScheduler(collector, cache.NewRunCache(cfg.Collector.RunHistory), 0, logger),
		sensors:   repositories.NewSensorPgRepository(database),
	}, nil
}

// sensorNames maps sensor ids to display names; lookup failures just leave ids shown.
func (s *collectorSession) sensorNames(ctx context.Context) map[string]string {
	names := map[string]string{}
	sensors, err := s.sensors.GetAll(ctx)
	if err != nil {
		logger.Warn("could not load sensor names", "error", err)
		return names
	}
	for _, sensor := range sensors {
		names[sensor.ID] = sensor.Name
	}
	return names
}

// Close waits for a run the watch UI may have left in flight, then releases the stores.
func (s *collectorSession) Close() {
	s.scheduler.Wait()
	if s.store != nil {
		s.store.Close()
	}
	s.database.Close()
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	session, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	record, err := session.scheduler.Trigger(cmd.Context(), services.TriggerCLI)
	if err != nil {
		return fmt.Errorf("collector run failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record.Report)
	}
	fmt.Println(renderRun(record, session.sensorNames(cmd.Context())))
	return nil
}
