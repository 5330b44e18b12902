package app

import (
	"flag"

	"netinfo/internal/database"
	"netinfo/internal/server"
	"netinfo/internal/support"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const defaultPort = 8080

// Run starts the query API server. The importer populates the table this
// serves; the server itself only ever reads.
func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	portFlag := flag.Int("port", defaultPort, "Port for the API server")
	debugFlag := flag.Bool("debug", false, "Set log level to DEBUG")
	flag.Parse()

	if *debugFlag {
		log.SetLevel(log.DebugLevel)
	}

	if _, err := database.SetupDB(database.WithAutoMigrate(false)); err != nil {
		return err
	}

	if _, err := support.GetRedisClient(); err != nil {
		log.Warn("Redis unavailable, rate limiting and stats caching disabled", "error", err)
	}
	defer func() {
		if err := support.CloseRedisClient(); err != nil {
			log.Warn("error closing redis client", "error", err)
		}
	}()

	port := support.GetEnvInt("PORT", *portFlag)
	return server.OpenRoutes(port)
}
