package main

import (
	"os"

	"gigtrack-cli/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env in the working directory; real environment variables win.
	_ = godotenv.Load()

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
