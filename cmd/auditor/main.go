package main

import (
	"os"

	"financial-audit-service/cmd/auditor/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	os.Exit(cmd.Execute())
}
