package main

import (
	"github.com/haytac/cogbot/internal/cli"
	"github.com/haytac/cogbot/internal/logging"
)

func main() {
	// Replaced by the configured logger once the root command loads the config.
	logging.Setup(logging.Config{Level: "info", Console: true, TimeFormat: "15:04:05"})
	cli.Execute()
}
