package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "meetspot"}

	root.AddCommand(serveCMD(), recommendCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
