package main

import (
	"fmt"
	"os"

	"meeting-transcriber/cmd/mtp/cmd"
	"meeting-transcriber/internal/config"
)

// @title Meeting Transcriber Credential Broker
// @version 1.0
// @description Issues temporary credentials for uploading meeting videos. Served by `mtp broker`.
// @BasePath /
func main() {
	// A missing .env is fine; the environment may already carry the settings.
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
