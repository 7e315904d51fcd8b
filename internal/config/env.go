package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envOverlay mirrors the tunables that may be overridden from the process
// environment. Pointer fields stay nil unless the variable is present.
type envOverlay struct {
	EnableOnImages             *bool          `env:"ENABLE_ON_IMAGES"`
	EnableOnIframes            *bool          `env:"ENABLE_ON_IFRAMES"`
	PreloadEnable              *bool          `env:"PRELOAD_ENABLE"`
	ExpandValue                *int           `env:"EXPAND_VALUE"`
	CustomSettings             *string        `env:"CUSTOM_SETTINGS"`
	PlaceholdersDisable        *bool          `env:"PLACEHOLDERS_DISABLE"`
	PlaceholderColor           *string        `env:"PLACEHOLDER_COLOR"`
	LQIPEnable                 *bool          `env:"LQIP_ENABLE"`
	LQIPBlurRadius             *int           `env:"LQIP_BLUR_RADIUS"`
	LQIPSize                   *int           `env:"LQIP_SIZE"`
	LQIPBase64Enable           *bool          `env:"LQIP_BASE64_ENABLE"`
	ImageAverageColorBgEnable  *bool          `env:"IMAGE_AVERAGE_COLOR_BG_ENABLE"`
	IframeAverageColorBgEnable *bool          `env:"IFRAME_AVERAGE_COLOR_BG_ENABLE"`
	IframeResponsiveFix        *bool          `env:"IFRAME_RESPONSIVE_FIX"`
	NoscriptEnable             *bool          `env:"NOSCRIPT_ENABLE"`
	CacheEnable                *bool          `env:"CACHE_ENABLE"`
	Prefix                     *string        `env:"PREFIX"`
	FetchTimeout               *time.Duration `env:"FETCH_TIMEOUT"`
	FetchMaxAttempts           *int           `env:"FETCH_MAX_ATTEMPTS"`
	MaxImageBytes              *int64         `env:"MAX_IMAGE_BYTES"`
	UserAgent                  *string        `env:"USER_AGENT"`
	BaseURL                    *string        `env:"BASE_URL"`
}

const envPrefix = "LAZYLOAD_"

// WithEnv overlays LAZYLOAD_* environment variables on top of base and
// returns the rebuilt config. base itself is left untouched.
func WithEnv(base Config) (Config, error) {
	var overlay envOverlay
	if err := env.ParseWithOptions(&overlay, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrEnvParsingFail, err.Error())
	}
	return overlay.apply(base)
}

func (o envOverlay) apply(base Config) (Config, error) {
	cfg := base
	if o.EnableOnImages != nil {
		cfg.enableOnImages = *o.EnableOnImages
	}
	if o.EnableOnIframes != nil {
		cfg.enableOnIframes = *o.EnableOnIframes
	}
	if o.PreloadEnable != nil {
		cfg.preloadEnable = *o.PreloadEnable
	}
	if o.ExpandValue != nil {
		cfg.WithExpandValue(*o.ExpandValue)
	}
	if o.CustomSettings != nil {
		cfg.customSettings = *o.CustomSettings
	}
	if o.PlaceholdersDisable != nil {
		cfg.placeholdersDisable = *o.PlaceholdersDisable
	}
	if o.PlaceholderColor != nil {
		cfg.placeholderColor = *o.PlaceholderColor
	}
	if o.LQIPEnable != nil {
		cfg.lqipEnable = *o.LQIPEnable
	}
	if o.LQIPBlurRadius != nil {
		cfg.lqipBlurRadius = *o.LQIPBlurRadius
	}
	if o.LQIPSize != nil {
		cfg.lqipSize = *o.LQIPSize
	}
	if o.LQIPBase64Enable != nil {
		cfg.lqipBase64Enable = *o.LQIPBase64Enable
	}
	if o.ImageAverageColorBgEnable != nil {
		cfg.imageAverageColorBgEnable = *o.ImageAverageColorBgEnable
	}
	if o.IframeAverageColorBgEnable != nil {
		cfg.iframeAverageColorBgEnable = *o.IframeAverageColorBgEnable
	}
	if o.IframeResponsiveFix != nil {
		cfg.iframeResponsiveFix = *o.IframeResponsiveFix
	}
	if o.NoscriptEnable != nil {
		cfg.noscriptEnable = *o.NoscriptEnable
	}
	if o.CacheEnable != nil {
		cfg.cacheEnable = *o.CacheEnable
	}
	if o.Prefix != nil {
		cfg.prefix = *o.Prefix
	}
	if o.FetchTimeout != nil {
		cfg.fetchTimeout = *o.FetchTimeout
	}
	if o.FetchMaxAttempts != nil {
		cfg.fetchMaxAttempts = *o.FetchMaxAttempts
	}
	if o.MaxImageBytes != nil {
		cfg.maxImageBytes = *o.MaxImageBytes
	}
	if o.UserAgent != nil {
		cfg.userAgent = *o.UserAgent
	}
	if o.BaseURL != nil {
		if err := cfg.WithBaseURLString(*o.BaseURL); err != nil {
			return Config{}, err
		}
	}
	return cfg.Build()
}
