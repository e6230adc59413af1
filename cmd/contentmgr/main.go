package main

import (
	"os"

	"github.com/rjratcon/rachaeljuzeler/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
