package main

import (
	"netinfo/internal/app"

	"github.com/charmbracelet/log"
)

func main() {
	if err := app.RunImport(); err != nil {
		log.Fatal("import terminated", "error", err)
	}
}
