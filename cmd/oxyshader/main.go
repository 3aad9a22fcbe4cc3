package main

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-shader/cmd"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := cmd.Execute(); err != nil {
		slog.Error("oxyshader", "err", err)
		os.Exit(1)
	}
}
