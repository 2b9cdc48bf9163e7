package main

import (
	"github.com/tinyio/shortener/cmd"
	_ "github.com/tinyio/shortener/cmd/cli"    // registers shorten, resolve, stats, migrate, purge
	_ "github.com/tinyio/shortener/cmd/server" // registers serve
)

func main() {
	cmd.Execute()
}
