package main

import (
	"os"

	"github.com/bnema/amxbpm-admin-cli/cmd"
)

func main() {
	os.Exit(cmd.Report(os.Stdout, os.Stderr, cmd.Execute()))
}
