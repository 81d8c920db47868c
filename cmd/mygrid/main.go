package main

import (
	"flag"
	"os"
	"runtime"

	"mygrid/internal/config"
	"mygrid/internal/logging"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	logging.SetLogger(logging.NewText(os.Stderr, cfg.LogLevel))
	config.SetFPSLimit(cfg.FPSLimit)

	if err := glfw.Init(); err != nil {
		panic(err)
	}

	a, err := setupApp(cfg)
	if err != nil {
		glfw.Terminate()
		panic(err)
	}

	// Signals close the window; teardown stays on this thread.
	stop := newShutdown(a.res.Window)
	closer.Bind(stop.request)

	NewFrameLoop(a).Run()

	stop.finish(func() {
		a.Close()
		glfw.Terminate()
	})
	logging.Logger().Info("mygrid: exited cleanly")
	closer.Close()
}
