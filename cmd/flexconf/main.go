package main

import (
	"os"

	"github.com/goliatone/go-flexconf/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
