package main

import (
	"os"

	"stockwatch/cmd/stockwatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
