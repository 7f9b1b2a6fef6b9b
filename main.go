package main

import (
	"os"

	"github.com/eerhardt/nni-mlnet/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
