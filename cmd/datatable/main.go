package main

import (
	"context"
	"os"

	"github.com/rshade/datatable/internal/cli"
	"github.com/rshade/datatable/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}
