package main

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/config"
	"github.com/vbonduro/labinv/internal/db"
	"github.com/vbonduro/labinv/internal/logging"
	"github.com/vbonduro/labinv/internal/photostore/local"
	"github.com/vbonduro/labinv/internal/service"
	"github.com/vbonduro/labinv/internal/store"
	"github.com/vbonduro/labinv/internal/vision"
	claudevision "github.com/vbonduro/labinv/internal/vision/claude"
	ollamavision "github.com/vbonduro/labinv/internal/vision/ollama"
	"github.com/vbonduro/labinv/internal/web"
)

// app holds everything a command needs. Close releases it in reverse order.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	database *sql.DB
	services web.Services
	cleanup  func()
}

func newApp() (*app, error) {
	cfg, err := config.Load(rootFlags[configFlag].GetString())
	if err != nil {
		return nil, err
	}
	if v := rootFlags[dbFlag].GetString(); v != "" {
		cfg.DBPath = v
	}
	if v := rootFlags[addrFlag].GetString(); v != "" {
		cfg.ListenAddr = v
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		cleanup()
		return nil, err
	}

	photoStg, err := local.NewFileStore(cfg.PhotoPath)
	if err != nil {
		_ = database.Close()
		cleanup()
		return nil, fmt.Errorf("failed to initialize photo store: %w", err)
	}

	records := store.NewRecordStore(database)
	zones := store.NewZoneStore(database)
	layouts := store.NewLayoutStore(database)
	regions := store.NewRegionStore(database)
	fridges := store.NewFridgeStore(database)
	schematics := store.NewSchematicStore(database)

	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		services: web.Services{
			Records:    service.NewRecordService(records, zones, regions, layouts, schematics, logger),
			Zones:      service.NewZoneService(zones, layouts, schematics, logger),
			Layouts:    service.NewLayoutService(zones, layouts, regions, records, photoStg, newRegionSuggester(cfg, logger), logger),
			Occupancy:  service.NewOccupancyService(zones, layouts, schematics, records),
			Reconciler: service.NewReconciler(records, zones, regions, layouts, logger),
			Fridges:    service.NewFridgeService(fridges, zones, schematics, logger),
			Schematics: service.NewSchematicService(schematics, zones, fridges, records, photoStg, logger),
			Antibodies: service.NewAntibodyService(store.NewAntibodyStore(database), zones, logger),
			Settings:   service.NewSettingService(store.NewSettingStore(database), logger),
		},
		cleanup: cleanup,
	}, nil
}

func (a *app) Close() {
	if err := a.database.Close(); err != nil {
		a.logger.Error("failed to close database", zap.Error(err))
	}
	a.cleanup()
}

// newRegionSuggester returns nil when no vision backend is configured.
func newRegionSuggester(cfg *config.Config, logger *zap.Logger) vision.RegionSuggester {
	switch cfg.VisionBackend {
	case config.VisionClaude:
		logger.Info("using Claude vision backend", zap.String("model", cfg.ClaudeModel))
		return claudevision.NewClaudeSuggester(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case config.VisionOllama:
		logger.Info("using Ollama vision backend", zap.String("model", cfg.OllamaModel))
		return ollamavision.NewOllamaSuggester(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("region suggestions disabled")
		return nil
	}
}
