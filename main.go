package main

import (
	"os"

	"content-qa-cms/commands"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	commands.SetVersion(version)
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
