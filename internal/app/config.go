package app

import (
	"fmt"
	"log"
	"os"
	"time"

	"photo-viewer/internal/imageload"
	"photo-viewer/internal/viewer"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "VIEWER"

// Config holds the tunables read at startup.
type Config struct {
	MaxScale        float64
	MinScaleFactor  float64
	MinScaleCeiling float64
	WheelZoomIn     float64
	WheelZoomOut    float64
	Transition      time.Duration
	MaxTextureSize  uint
	MaxPixels       uint64
	LoadTimeout     time.Duration
	WatchFiles      bool
	WatchDebounce   time.Duration
}

// NewConfig returns a viper instance with every key defaulted and
// VIEWER_* environment overrides enabled.
func NewConfig() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	def := viewer.DefaultOptions()
	v.SetDefault("maxScale", def.MaxScale)
	v.SetDefault("minScaleFactor", def.MinScaleFactor)
	v.SetDefault("minScaleCeiling", def.MinScaleCeiling)
	v.SetDefault("wheelZoomIn", def.WheelZoomIn)
	v.SetDefault("wheelZoomOut", def.WheelZoomOut)
	v.SetDefault("transition", 150*time.Millisecond)
	v.SetDefault("maxTextureSize", imageload.DefaultMaxTextureSize)
	v.SetDefault("maxPixels", imageload.DefaultMaxPixels)
	v.SetDefault("loadTimeout", imageload.DefaultTimeout)
	v.SetDefault("watchFiles", true)
	v.SetDefault("watchDebounce", 250*time.Millisecond)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// LoadConfig reads .env (if present), the optional config file at path and
// the environment, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat .env: %w", err)
	}

	v := NewConfig()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		log.Printf("Config: loaded %s", path)
	}
	return configFrom(v), nil
}

func configFrom(v *viper.Viper) *Config {
	return &Config{
		MaxScale:        v.GetFloat64("maxScale"),
		MinScaleFactor:  v.GetFloat64("minScaleFactor"),
		MinScaleCeiling: v.GetFloat64("minScaleCeiling"),
		WheelZoomIn:     v.GetFloat64("wheelZoomIn"),
		WheelZoomOut:    v.GetFloat64("wheelZoomOut"),
		Transition:      v.GetDuration("transition"),
		MaxTextureSize:  v.GetUint("maxTextureSize"),
		MaxPixels:       v.GetUint64("maxPixels"),
		LoadTimeout:     v.GetDuration("loadTimeout"),
		WatchFiles:      v.GetBool("watchFiles"),
		WatchDebounce:   v.GetDuration("watchDebounce"),
	}
}

// ViewerOptions returns the zoom limits for the viewer state machine.
func (c *Config) ViewerOptions() viewer.Options {
	return viewer.Options{
		MaxScale:        c.MaxScale,
		MinScaleFactor:  c.MinScaleFactor,
		MinScaleCeiling: c.MinScaleCeiling,
		WheelZoomIn:     c.WheelZoomIn,
		WheelZoomOut:    c.WheelZoomOut,
	}
}

// LoaderOptions returns the image loader settings.
func (c *Config) LoaderOptions() []imageload.Option {
	return []imageload.Option{
		imageload.WithMaxTextureSize(c.MaxTextureSize),
		imageload.WithMaxPixels(c.MaxPixels),
		imageload.WithTimeout(c.LoadTimeout),
	}
}
