// Package main is the entry point for the vidsieve application.
package main

import (
	"github.com/samber/lo"
	"github.com/vidsieve-cli/vidsieve/cmd"
	"github.com/vidsieve-cli/vidsieve/config"
	"github.com/vidsieve-cli/vidsieve/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
