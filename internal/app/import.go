package app

import (
	"flag"

	"netinfo/internal/database"
	"netinfo/internal/importer"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// RunImport executes one ingestion run over the configured dump directory.
func RunImport() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	dirFlag := flag.String("dir", "./databases", "Directory holding the registry dumps")
	incrementalFlag := flag.Bool("incremental", false, "Update existing records instead of dropping the table (uses upsert)")
	workersFlag := flag.Int("workers", 0, "Worker pool size (0 = one per core)")
	debugFlag := flag.Bool("debug", false, "Set log level to DEBUG")
	flag.Parse()

	if *debugFlag {
		log.SetLevel(log.DebugLevel)
	}

	// Schema creation is owned by the importer: full refresh drops the
	// table first, incremental creates it only when absent.
	if _, err := database.SetupDB(database.WithAutoMigrate(false)); err != nil {
		return err
	}

	return importer.Run(importer.Options{
		Dir:         *dirFlag,
		Incremental: *incrementalFlag,
		Workers:     *workersFlag,
	})
}
