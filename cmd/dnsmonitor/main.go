package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
)

var version = "dev"

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed")
		os.Exit(1)
	}
}
