// Package main is the entry point for the duocast application.
package main

import (
	"github.com/duocast-cli/duocast/cmd"
	"github.com/duocast-cli/duocast/config"
	"github.com/duocast-cli/duocast/internal/cache"
	"github.com/duocast-cli/duocast/log"
	"github.com/duocast-cli/duocast/util"
	"github.com/duocast-cli/duocast/where"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Stale IPC sockets from previous runs live under the temp directory.
	go func() {
		_ = util.Delete(where.Temp())
	}()
	cache.CollectGarbage()

	cmd.Execute()
}
