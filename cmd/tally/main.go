package main

import (
	"context"
	"os"

	"github.com/okian/tally/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Stderr.WriteString("tally: " + err.Error() + "\n")
		os.Exit(1)
	}
}
