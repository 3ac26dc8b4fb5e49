package main

import (
	"flag"
	"fmt"
	"os"

	"spincube/internal/logging"
	"spincube/quad"
)

func main() {
	var (
		width    = flag.Int("width", 800, "Window width.")
		height   = flag.Int("height", 600, "Window height.")
		logLevel = flag.String("log-level", "info", "Log level: debug, info, warn or error.")
	)
	flag.Parse()

	log, err := logging.New(os.Stderr, *logLevel)
	if err != nil {
		fatalf("%v", err)
	}
	if *width <= 0 || *height <= 0 {
		fatalf("invalid window size %dx%d", *width, *height)
	}
	if err := quad.Run(*width, *height, log); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
