package config

import (
	"strconv"
	"strings"
)

// ControllerConfig holds process settings for the deck controller.
type ControllerConfig struct {
	CDPAddress    string
	CDPPort       int
	EvalTimeoutMS int

	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
	CORSOrigins      []string
	PublicURL        string

	DeckFile  string
	ExportDir string

	// Mirror drives a real browser tab over CDP in addition to WebSocket viewers.
	Mirror        bool
	LaunchBrowser bool
	BrowserPath   string
	ProfileDir    string
	ConsoleLevels []string

	LogLevel     string
	LogFile      string
	OTelEndpoint string
}

// LoadController reads controller configuration from environment variables
// and an optional .env file.
func LoadController() (*ControllerConfig, error) {
	loadDotenv()

	cfg := &ControllerConfig{
		CDPAddress:       getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:          getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9220),
		EvalTimeoutMS:    getEnvIntOrDefault("CONTROLLER_EVAL_TIMEOUT_MS", 5000),
		BindAddr:         getEnvOrDefault("CONTROLLER_BIND_ADDR", "127.0.0.1:8188"),
		PortCandidates:   getEnvListOrDefault("CONTROLLER_PORT_CANDIDATES", "127.0.0.1:8189,127.0.0.1:8190,127.0.0.1:8191"),
		PortAutoFallback: getEnvBoolOrDefault("CONTROLLER_PORT_AUTO_FALLBACK", true),
		CORSOrigins:      getEnvListOrDefault("CONTROLLER_CORS_ORIGINS", "*"),
		PublicURL:        getEnvOrDefault("CONTROLLER_PUBLIC_URL", ""),
		DeckFile:         getEnvOrDefault("CONTROLLER_DECK_FILE", "./deck.yaml"),
		ExportDir:        getEnvOrDefault("EXPORT_DIR", "./exports"),
		Mirror:           getEnvBoolOrDefault("CONTROLLER_MIRROR", false),
		LaunchBrowser:    getEnvBoolOrDefault("CONTROLLER_LAUNCH_BROWSER", false),
		BrowserPath:      getEnvOrDefault("CHROMIUM_PATH", ""),
		ProfileDir:       getEnvOrDefault("CHROMIUM_PROFILE_DIR", "./browser_profile"),
		ConsoleLevels:    getEnvListOrDefault("CONTROLLER_CONSOLE_LEVELS", "log,info,warn,error"),
		LogLevel:         strings.ToLower(getEnvOrDefault("CONTROLLER_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("CONTROLLER_LOG_FILE", "logs/deck_controller.log"),
		OTelEndpoint:     getEnvOrDefault("DECK_OTEL_ENDPOINT", ""),
	}
	if cfg.EvalTimeoutMS < 1000 {
		cfg.EvalTimeoutMS = 1000
	}
	return cfg, nil
}

// ControllerCDPURL returns the CDP HTTP endpoint.
func (c *ControllerConfig) ControllerCDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}

// DeckURL returns the URL browsers should open for the deck page served on
// bindAddr, honoring CONTROLLER_PUBLIC_URL when set.
func (c *ControllerConfig) DeckURL(bindAddr string) string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/") + "/"
	}
	return "http://" + bindAddr + "/"
}
