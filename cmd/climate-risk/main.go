package main

import (
	"os"

	"github.com/mr1hm/go-climate-risk/cmd/climate-risk/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
