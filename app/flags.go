package app

import "flag"

// Flags are the command line overrides for a Config. Only flags given on the command line
// are applied.
type Flags struct {
	ConfigPath string

	fs       *flag.FlagSet
	driver   string
	headless bool
	ticks    uint64
	snapshot string
	watch    bool
	logLevel string
}

// RegisterFlags defines the flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", DefaultConfigPath, "Config file (YAML).")
	fs.StringVar(&f.driver, "driver", DriverGL, "Graphics driver: gl or soft.")
	fs.BoolVar(&f.headless, "headless", false, "Run without a window using the software driver.")
	fs.Uint64Var(&f.ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run until interrupted).")
	fs.StringVar(&f.snapshot, "snapshot", "", "Write the last headless frame to this PNG file.")
	fs.BoolVar(&f.watch, "watch", false, "Reload shaders when their files change.")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	return f
}

// Apply overrides cfg with every flag that was set.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "driver":
			cfg.Driver = f.driver
		case "headless":
			cfg.Headless.Enabled = f.headless
		case "ticks":
			cfg.Headless.Ticks = f.ticks
		case "snapshot":
			cfg.Headless.Snapshot = f.snapshot
		case "watch":
			cfg.Watch = f.watch
		case "log-level":
			cfg.LogLevel = f.logLevel
		}
	})
}
