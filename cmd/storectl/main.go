package main

import (
	"os"

	storectlcmd "github.com/lelloman/storectl/pkg/storectl/cmd"
)

func main() {
	root := storectlcmd.NewRootCommand(storectlcmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
