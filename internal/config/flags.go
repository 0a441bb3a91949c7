package config

import "flag"

// Flags holds command-line overrides bound to a flag set.
type Flags struct {
	Config        *string
	Debug         *bool
	LogFile       *string
	Metrics       *bool
	LeafThreshold *int
	NodeLimit     *int
	FOV           *float64
	Far           *float64
}

// BindFlags registers the shared overrides on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:        fs.String("config", "", "Path to config file"),
		Debug:         fs.Bool("debug", false, "Enable debug logging"),
		LogFile:       fs.String("log-file", "", "Write logs to this file as well"),
		Metrics:       fs.Bool("metrics", false, "Print collected metrics on exit"),
		LeafThreshold: fs.Int("leaf", -1, "Leaf threshold override (-1 = config)"),
		NodeLimit:     fs.Int("node-limit", -1, "Node budget per cluster (-1 = config, 0 = unlimited)"),
		FOV:           fs.Float64("fov", 0, "Vertical field of view in degrees"),
		Far:           fs.Float64("far", 0, "Far plane distance"),
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.Config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
	if *f.Metrics {
		cfg.Metrics.Enabled = true
	}
	if *f.LeafThreshold >= 0 {
		cfg.Cluster.LeafThreshold = *f.LeafThreshold
	}
	if *f.NodeLimit >= 0 {
		cfg.Cluster.NodeLimit = *f.NodeLimit
	}
	if *f.FOV > 0 {
		cfg.Camera.FOV = float32(*f.FOV)
	}
	if *f.Far > 0 {
		cfg.Camera.Far = float32(*f.Far)
	}
}
