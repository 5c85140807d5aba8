package main

import (
	"os"

	"github.com/rs/zerolog"
	zero "github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/cli"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	zero.Logger = zero.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := cli.Execute(); err != nil {
		zero.Error().Err(err).Send()
		os.Exit(1)
	}
}
