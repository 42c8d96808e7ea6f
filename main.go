package main

import (
	"os"

	"github.com/dot5enko/simple-range-join/cli"
	"github.com/fatih/color"
)

func main() {

	if err := cli.NewRootCommand().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
