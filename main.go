package main

import (
	"context"
	"os"

	"github.com/anchorageoss/checkreceipt/cmd"
)

func main() {
	os.Exit(cmd.Run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr))
}
