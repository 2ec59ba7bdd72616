package main

import (
	"os"

	"github.com/tzneal/egbt22trans/cmd/egbt22trans/cli"
	_ "github.com/tzneal/egbt22trans/cmd/egbt22trans/commands"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
