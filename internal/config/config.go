// Package config resolves settings from flags, environment and an
// optional YAML config file.
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"webpuppet/internal/driver"
)

const EnvPrefix = "WEBPUPPET"

const (
	browserFlag      = "browser"
	profileFlag      = "profile"
	profilesFileFlag = "profiles-file"
	headlessFlag     = "headless"
	noSandboxFlag    = "no-sandbox"
	devToolsFlag     = "devtools"
	timeoutFlag      = "timeout"
	slowMotionFlag   = "slow-motion"
	windowWidthFlag  = "window-width"
	windowHeightFlag = "window-height"
	userAgentFlag    = "user-agent"
	binaryFlag       = "browser-binary"
	cookieFileFlag   = "cookie-file"
	shotMaxWidthFlag = "screenshot-max-width"
	logLevelFlag     = "log-level"
	logFormatFlag    = "log-format"
	configFileFlag   = "config"
)

var envReplacer = strings.NewReplacer("-", "_")

var logLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// LoadEnv layers .env files the way older tooling around this project
// expects: base .env first, then .env.$APP_ENV overrides.
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	if err := godotenv.Load(".env"); err == nil {
		log.Printf("loaded .env")
	}
	if err := godotenv.Overload(".env." + appEnv); err == nil {
		log.Printf("loaded .env.%s", appEnv)
	}
}

// RegisterFlags declares all command line flags on f.
func RegisterFlags(f *pflag.FlagSet) {
	defaults := driver.DefaultOptions()

	f.String(browserFlag, string(driver.TypeChrome), "Browser to launch (chrome, chromium or edge)")
	f.String(profileFlag, "", "Named profile from the profiles file")
	f.String(profilesFileFlag, "", "Path to profiles YAML file")
	f.Bool(headlessFlag, defaults.Headless, "Run the browser without a visible window")
	f.Bool(noSandboxFlag, defaults.NoSandbox, "Disable the browser sandbox (containers usually need this)")
	f.Bool(devToolsFlag, defaults.DevTools, "Open devtools on launch")
	f.Duration(timeoutFlag, defaults.Timeout, "Default timeout for element lookups")
	f.Duration(slowMotionFlag, defaults.SlowMotion, "Delay between browser actions, for debugging")
	f.Int(windowWidthFlag, defaults.WindowWidth, "Browser window width")
	f.Int(windowHeightFlag, defaults.WindowHeight, "Browser window height")
	f.String(userAgentFlag, "", "Override the browser user agent")
	f.String(binaryFlag, "", "Path to the browser executable (skips PATH lookup)")
	f.String(cookieFileFlag, defaults.CookieFile, "File to persist cookies between sessions")
	f.Int(shotMaxWidthFlag, defaults.ScreenshotMaxWidth, "Downscale screenshots wider than this")
	f.String(logLevelFlag, "info", "Log level (debug, info, warn, error)")
	f.String(logFormatFlag, "console", "Log format (console or json)")
	f.String(configFileFlag, "", "Path to YAML config file")
}

// Config resolves settings with flag < config file < environment
// precedence handled by viper.
type Config struct {
	v       *viper.Viper
	browser driver.Type
}

func New(f *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if err := v.BindPFlags(f); err != nil {
		return nil, err
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(envReplacer)
	v.SetEnvPrefix(EnvPrefix)

	if cfgFile := v.GetString(configFileFlag); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", cfgFile)
		}
	}

	browser, err := driver.ParseType(strings.ToLower(v.GetString(browserFlag)))
	if err != nil {
		return nil, err
	}

	return &Config{v: v, browser: browser}, nil
}

func (c *Config) Browser() driver.Type {
	return c.browser
}

func (c *Config) Profile() string {
	return c.v.GetString(profileFlag)
}

func (c *Config) ProfilesFile() string {
	return c.v.GetString(profilesFileFlag)
}

func (c *Config) LogLevel() zapcore.Level {
	if lvl, ok := logLevelMap[strings.ToLower(c.v.GetString(logLevelFlag))]; ok {
		return lvl
	}
	return zapcore.InfoLevel
}

func (c *Config) LogFormat() string {
	return strings.ToLower(c.v.GetString(logFormatFlag))
}

// DriverOptions maps the resolved settings onto launch options.
func (c *Config) DriverOptions() driver.Options {
	opts := driver.DefaultOptions()
	opts.Headless = c.v.GetBool(headlessFlag)
	opts.NoSandbox = c.v.GetBool(noSandboxFlag)
	opts.DevTools = c.v.GetBool(devToolsFlag)
	opts.Timeout = c.v.GetDuration(timeoutFlag)
	opts.SlowMotion = c.v.GetDuration(slowMotionFlag)
	opts.WindowWidth = c.v.GetInt(windowWidthFlag)
	opts.WindowHeight = c.v.GetInt(windowHeightFlag)
	opts.UserAgent = c.v.GetString(userAgentFlag)
	opts.BinaryPath = c.v.GetString(binaryFlag)
	opts.CookieFile = c.v.GetString(cookieFileFlag)
	opts.ScreenshotMaxWidth = c.v.GetInt(shotMaxWidthFlag)
	return opts
}
