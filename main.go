package main

import (
	"os"

	"molt/cmd"
)

func main() {
	root := cmd.CreateRootCmd()
	root.AddCommand(
		cmd.CreateServeCmd(),
		cmd.CreateCheckCmd(),
		cmd.CreateVersionCmd(),
		cmd.CreateUpdateCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
