package main

import (
	"context"
	"os"

	"mailflow/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Stdin, os.Stdout, os.Stderr))
}
