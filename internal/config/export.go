package config

// ExportConfig holds settings for the deck_export command.
type ExportConfig struct {
	*ControllerConfig

	// RemoteCDP attaches to the running browser at CDPAddress:CDPPort
	// instead of launching a headless one.
	RemoteCDP      bool
	Headless       bool
	TimeoutSeconds int
	SlideSettleMS  int
}

// LoadExport reads export configuration. It builds on LoadController and
// moves the log file so both binaries can run side by side.
func LoadExport() (*ExportConfig, error) {
	base, err := LoadController()
	if err != nil {
		return nil, err
	}
	if base.LogFile == "logs/deck_controller.log" {
		base.LogFile = getEnvOrDefault("EXPORT_LOG_FILE", "logs/deck_export.log")
	}
	cfg := &ExportConfig{
		ControllerConfig: base,
		RemoteCDP:        getEnvBoolOrDefault("EXPORT_REMOTE_CDP", false),
		Headless:         getEnvBoolOrDefault("EXPORT_HEADLESS", true),
		TimeoutSeconds:   getEnvIntOrDefault("EXPORT_TIMEOUT_SECONDS", 120),
		SlideSettleMS:    getEnvIntOrDefault("EXPORT_SLIDE_SETTLE_MS", 400),
	}
	if cfg.TimeoutSeconds < 10 {
		cfg.TimeoutSeconds = 10
	}
	return cfg, nil
}
