package main

import (
	"os"

	"prstats/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
