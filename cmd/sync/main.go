package main

import (
	"context"
	"flag"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/app"
	"github.com/fikalearn/paperweek/internal/importer"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	if config.Importer.SheetID == "" {
		logger.Error.Fatal("No sheet_id configured in [importer] section")
	}

	st, err := app.NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	imp := importer.New(st, config.Importer.SheetID, config.Importer.ClassFilter)
	analysis, err := imp.Sync(ctx)
	if err != nil {
		logger.Error.Fatalf("Sync failed: %v", err)
	}

	logger.Info.Printf("Imported %d questions", analysis.TotalQuestions)
	for section, count := range analysis.BySection {
		logger.Info.Printf("  Section %s: %d", section, count)
	}
	for subject, count := range analysis.BySubject {
		logger.Debug.Printf("  %s: %d", subject, count)
	}
}
