package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/lazyload/internal/build"
	"github.com/rohmanhakim/lazyload/pkg/hashutil"
)

// Config is the effective, immutable set of tunables for one Process call.
// It is never mutated by the engine; use WithDefault().WithXxx(...).Build()
// to obtain a sanitized value.
type Config struct {
	//===============
	//  Scope
	//===============
	enableOnImages  bool
	enableOnIframes bool

	//===============
	//  Runtime script
	//===============
	// Ask the browser runtime to preload remaining items after page load
	preloadEnable bool
	// Extra viewport margin in px. nil means "leave the runtime default"
	expandValue *int
	// Raw script appended to the runtime configuration snippet
	customSettings string

	//===============
	//  Placeholders
	//===============
	placeholdersDisable bool
	// CSS color painted behind every placeholder container
	placeholderColor string
	lqipEnable       bool
	// Blur applied to the LQIP preview, in px. Valid 0..50
	lqipBlurRadius int
	// Longest edge of the registered LQIP asset, in px. Valid 15..100
	lqipSize                   int
	lqipBase64Enable           bool
	imageAverageColorBgEnable  bool
	iframeAverageColorBgEnable bool
	// Apply literal pixel sizing to iframes when the host does not make
	// embeds responsive itself
	iframeResponsiveFix bool

	//===============
	//  Transitions
	//===============
	imageTransitionTime       time.Duration
	imageTransitionDelay      time.Duration
	imageTransitionEffect     string
	imageLQIPTransitionTime   time.Duration
	imageLQIPTransitionDelay  time.Duration
	imageLQIPTransitionEffect string
	iframeTransitionTime      time.Duration
	iframeTransitionDelay     time.Duration
	iframeTransitionEffect    string

	//===============
	//  Output
	//===============
	noscriptEnable bool
	cacheEnable    bool
	// Prefix of every class and deferred attribute the browser runtime reads
	prefix string

	//===============
	//  Fetch
	//===============
	fetchTimeout time.Duration
	// 1 disables retries entirely
	fetchMaxAttempts       int
	backoffInitialDuration time.Duration
	backoffMultiplier      float64
	backoffMaxDuration     time.Duration
	jitter                 time.Duration
	randomSeed             int64
	maxImageBytes          int64
	userAgent              string
	// Base used to resolve relative src values. nil means relative sources
	// cannot be probed
	baseURL *url.URL
}

// allowed transition effects; the first one is the fallback
var transitionEffects = []string{
	"ease",
	"ease-in",
	"ease-out",
	"ease-in-out",
	"linear",
}

const (
	defaultLQIPSize       = 33
	defaultLQIPBlurRadius = 20
	minLQIPSize           = 15
	maxLQIPSize           = 100
	minLQIPBlurRadius     = 0
	maxLQIPBlurRadius     = 50
)

type configDTO struct {
	EnableOnImages             *bool   `json:"enableOnImages,omitempty"`
	EnableOnIframes            *bool   `json:"enableOnIframes,omitempty"`
	PreloadEnable              *bool   `json:"preloadEnable,omitempty"`
	ExpandValue                *int    `json:"expandValue,omitempty"`
	CustomSettings             string  `json:"customSettings,omitempty"`
	PlaceholdersDisable        *bool   `json:"placeholdersDisable,omitempty"`
	PlaceholderColor           string  `json:"placeholderColor,omitempty"`
	LQIPEnable                 *bool   `json:"lqipEnable,omitempty"`
	LQIPBlurRadius             *int    `json:"lqipBlurRadius,omitempty"`
	LQIPSize                   *int    `json:"lqipSize,omitempty"`
	LQIPBase64Enable           *bool   `json:"lqipBase64Enable,omitempty"`
	ImageAverageColorBgEnable  *bool   `json:"imageAverageColorBgEnable,omitempty"`
	IframeAverageColorBgEnable *bool   `json:"iframeAverageColorBgEnable,omitempty"`
	IframeResponsiveFix        *bool   `json:"iframeResponsiveFix,omitempty"`
	ImageTransitionTime        *int    `json:"imageTransitionTime,omitempty"`
	ImageTransitionDelay       *int    `json:"imageTransitionDelay,omitempty"`
	ImageTransitionEffect      string  `json:"imageTransitionEffect,omitempty"`
	ImageLQIPTransitionTime    *int    `json:"imageLqipTransitionTime,omitempty"`
	ImageLQIPTransitionDelay   *int    `json:"imageLqipTransitionDelay,omitempty"`
	ImageLQIPTransitionEffect  string  `json:"imageLqipTransitionEffect,omitempty"`
	IframeTransitionTime       *int    `json:"iframeTransitionTime,omitempty"`
	IframeTransitionDelay      *int    `json:"iframeTransitionDelay,omitempty"`
	IframeTransitionEffect     string  `json:"iframeTransitionEffect,omitempty"`
	NoscriptEnable             *bool   `json:"noscriptEnable,omitempty"`
	CacheEnable                *bool   `json:"cacheEnable,omitempty"`
	Prefix                     string  `json:"prefix,omitempty"`
	FetchTimeout               string  `json:"fetchTimeout,omitempty"`
	FetchMaxAttempts           int     `json:"fetchMaxAttempts,omitempty"`
	BackoffInitialDuration     string  `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier          float64 `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration         string  `json:"backoffMaxDuration,omitempty"`
	MaxImageBytes              int64   `json:"maxImageBytes,omitempty"`
	UserAgent                  string  `json:"userAgent,omitempty"`
	BaseURL                    string  `json:"baseUrl,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	// Booleans and timings are pointers so an explicit false/0 in the file
	// overrides a true/non-zero default.
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setMillis := func(dst *time.Duration, src *int) {
		if src != nil {
			*dst = time.Duration(*src) * time.Millisecond
		}
	}

	setBool(&cfg.enableOnImages, dto.EnableOnImages)
	setBool(&cfg.enableOnIframes, dto.EnableOnIframes)
	setBool(&cfg.preloadEnable, dto.PreloadEnable)
	setBool(&cfg.placeholdersDisable, dto.PlaceholdersDisable)
	setBool(&cfg.lqipEnable, dto.LQIPEnable)
	setBool(&cfg.lqipBase64Enable, dto.LQIPBase64Enable)
	setBool(&cfg.imageAverageColorBgEnable, dto.ImageAverageColorBgEnable)
	setBool(&cfg.iframeAverageColorBgEnable, dto.IframeAverageColorBgEnable)
	setBool(&cfg.iframeResponsiveFix, dto.IframeResponsiveFix)
	setBool(&cfg.noscriptEnable, dto.NoscriptEnable)
	setBool(&cfg.cacheEnable, dto.CacheEnable)

	if dto.ExpandValue != nil {
		cfg.WithExpandValue(*dto.ExpandValue)
	}
	cfg.customSettings = dto.CustomSettings
	if dto.PlaceholderColor != "" {
		cfg.placeholderColor = dto.PlaceholderColor
	}
	if dto.LQIPBlurRadius != nil {
		cfg.lqipBlurRadius = *dto.LQIPBlurRadius
	}
	if dto.LQIPSize != nil {
		cfg.lqipSize = *dto.LQIPSize
	}

	setMillis(&cfg.imageTransitionTime, dto.ImageTransitionTime)
	setMillis(&cfg.imageTransitionDelay, dto.ImageTransitionDelay)
	setMillis(&cfg.imageLQIPTransitionTime, dto.ImageLQIPTransitionTime)
	setMillis(&cfg.imageLQIPTransitionDelay, dto.ImageLQIPTransitionDelay)
	setMillis(&cfg.iframeTransitionTime, dto.IframeTransitionTime)
	setMillis(&cfg.iframeTransitionDelay, dto.IframeTransitionDelay)
	if dto.ImageTransitionEffect != "" {
		cfg.imageTransitionEffect = dto.ImageTransitionEffect
	}
	if dto.ImageLQIPTransitionEffect != "" {
		cfg.imageLQIPTransitionEffect = dto.ImageLQIPTransitionEffect
	}
	if dto.IframeTransitionEffect != "" {
		cfg.iframeTransitionEffect = dto.IframeTransitionEffect
	}

	if dto.Prefix != "" {
		cfg.prefix = dto.Prefix
	}

	var err error
	if cfg.fetchTimeout, err = parseDuration("fetchTimeout", dto.FetchTimeout, cfg.fetchTimeout); err != nil {
		return Config{}, err
	}
	if cfg.backoffInitialDuration, err = parseDuration("backoffInitialDuration", dto.BackoffInitialDuration, cfg.backoffInitialDuration); err != nil {
		return Config{}, err
	}
	if cfg.backoffMaxDuration, err = parseDuration("backoffMaxDuration", dto.BackoffMaxDuration, cfg.backoffMaxDuration); err != nil {
		return Config{}, err
	}
	if dto.FetchMaxAttempts != 0 {
		cfg.fetchMaxAttempts = dto.FetchMaxAttempts
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.MaxImageBytes != 0 {
		cfg.maxImageBytes = dto.MaxImageBytes
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.BaseURL != "" {
		if err := cfg.WithBaseURLString(dto.BaseURL); err != nil {
			return Config{}, err
		}
	}

	return cfg.Build()
}

func parseDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, err.Error())
	}
	return d, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config holding the stock plugin defaults.
func WithDefault() *Config {
	defaultConfig := Config{
		enableOnImages:             true,
		enableOnIframes:            true,
		preloadEnable:              false,
		expandValue:                nil,
		customSettings:             "",
		placeholdersDisable:        false,
		placeholderColor:           "rgba(0, 0, 0, 0.05)",
		lqipEnable:                 true,
		lqipBlurRadius:             defaultLQIPBlurRadius,
		lqipSize:                   defaultLQIPSize,
		lqipBase64Enable:           true,
		imageAverageColorBgEnable:  true,
		iframeAverageColorBgEnable: true,
		iframeResponsiveFix:        true,
		imageTransitionTime:        400 * time.Millisecond,
		imageTransitionDelay:       400 * time.Millisecond,
		imageTransitionEffect:      "ease",
		imageLQIPTransitionTime:    100 * time.Millisecond,
		imageLQIPTransitionDelay:   200 * time.Millisecond,
		imageLQIPTransitionEffect:  "ease",
		iframeTransitionTime:       400 * time.Millisecond,
		iframeTransitionDelay:      0,
		iframeTransitionEffect:     "ease",
		noscriptEnable:             true,
		cacheEnable:                true,
		prefix:                     "sarvarov",
		fetchTimeout:               5 * time.Second,
		fetchMaxAttempts:           1,
		backoffInitialDuration:     100 * time.Millisecond,
		backoffMultiplier:          2.0,
		backoffMaxDuration:         2 * time.Second,
		jitter:                     50 * time.Millisecond,
		randomSeed:                 time.Now().UnixNano(),
		maxImageBytes:              10 << 20,
		userAgent:                  "lazyload/" + build.EngineVersion,
	}
	return &defaultConfig
}

func (c *Config) WithEnableOnImages(enable bool) *Config {
	c.enableOnImages = enable
	return c
}

func (c *Config) WithEnableOnIframes(enable bool) *Config {
	c.enableOnIframes = enable
	return c
}

func (c *Config) WithPreloadEnable(enable bool) *Config {
	c.preloadEnable = enable
	return c
}

func (c *Config) WithExpandValue(px int) *Config {
	v := px
	c.expandValue = &v
	return c
}

func (c *Config) WithoutExpandValue() *Config {
	c.expandValue = nil
	return c
}

func (c *Config) WithCustomSettings(script string) *Config {
	c.customSettings = script
	return c
}

func (c *Config) WithPlaceholdersDisable(disable bool) *Config {
	c.placeholdersDisable = disable
	return c
}

func (c *Config) WithPlaceholderColor(color string) *Config {
	c.placeholderColor = color
	return c
}

func (c *Config) WithLQIPEnable(enable bool) *Config {
	c.lqipEnable = enable
	return c
}

func (c *Config) WithLQIPBlurRadius(px int) *Config {
	c.lqipBlurRadius = px
	return c
}

func (c *Config) WithLQIPSize(px int) *Config {
	c.lqipSize = px
	return c
}

func (c *Config) WithLQIPBase64Enable(enable bool) *Config {
	c.lqipBase64Enable = enable
	return c
}

func (c *Config) WithImageAverageColorBgEnable(enable bool) *Config {
	c.imageAverageColorBgEnable = enable
	return c
}

func (c *Config) WithIframeAverageColorBgEnable(enable bool) *Config {
	c.iframeAverageColorBgEnable = enable
	return c
}

func (c *Config) WithIframeResponsiveFix(enable bool) *Config {
	c.iframeResponsiveFix = enable
	return c
}

func (c *Config) WithImageTransition(duration, delay time.Duration, effect string) *Config {
	c.imageTransitionTime = duration
	c.imageTransitionDelay = delay
	c.imageTransitionEffect = effect
	return c
}

func (c *Config) WithImageLQIPTransition(duration, delay time.Duration, effect string) *Config {
	c.imageLQIPTransitionTime = duration
	c.imageLQIPTransitionDelay = delay
	c.imageLQIPTransitionEffect = effect
	return c
}

func (c *Config) WithIframeTransition(duration, delay time.Duration, effect string) *Config {
	c.iframeTransitionTime = duration
	c.iframeTransitionDelay = delay
	c.iframeTransitionEffect = effect
	return c
}

func (c *Config) WithNoscriptEnable(enable bool) *Config {
	c.noscriptEnable = enable
	return c
}

func (c *Config) WithCacheEnable(enable bool) *Config {
	c.cacheEnable = enable
	return c
}

func (c *Config) WithPrefix(prefix string) *Config {
	c.prefix = prefix
	return c
}

func (c *Config) WithFetchTimeout(timeout time.Duration) *Config {
	c.fetchTimeout = timeout
	return c
}

func (c *Config) WithFetchMaxAttempts(attempts int) *Config {
	c.fetchMaxAttempts = attempts
	return c
}

func (c *Config) WithBackoff(initial time.Duration, multiplier float64, max time.Duration) *Config {
	c.backoffInitialDuration = initial
	c.backoffMultiplier = multiplier
	c.backoffMaxDuration = max
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxImageBytes(n int64) *Config {
	c.maxImageBytes = n
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithBaseURL(base *url.URL) *Config {
	if base == nil {
		c.baseURL = nil
		return c
	}
	u := *base
	c.baseURL = &u
	return c
}

// WithBaseURLString parses raw and sets it as the base URL. Only absolute
// http(s) URLs are accepted.
func (c *Config) WithBaseURLString(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: baseUrl must be an absolute http(s) URL, got %q", ErrInvalidConfig, raw)
	}
	c.baseURL = u
	return nil
}

// Build sanitizes the collected values and returns an immutable copy.
// Out-of-range rendering values are reset rather than rejected; only
// structurally unusable values produce an error.
func (c *Config) Build() (Config, error) {
	c.sanitize()

	if c.prefix == "" {
		return Config{}, fmt.Errorf("%w: prefix cannot be empty", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.prefix, " \t\r\n\"'<>=") {
		return Config{}, fmt.Errorf("%w: prefix %q contains markup characters", ErrInvalidConfig, c.prefix)
	}
	if c.fetchTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: fetchTimeout must be positive", ErrInvalidConfig)
	}
	if c.fetchMaxAttempts < 1 {
		return Config{}, fmt.Errorf("%w: fetchMaxAttempts must be at least 1", ErrInvalidConfig)
	}
	if c.maxImageBytes <= 0 {
		return Config{}, fmt.Errorf("%w: maxImageBytes must be positive", ErrInvalidConfig)
	}

	built := *c
	if c.baseURL != nil {
		u := *c.baseURL
		built.baseURL = &u
	}
	if c.expandValue != nil {
		v := *c.expandValue
		built.expandValue = &v
	}
	return built, nil
}

func (c *Config) sanitize() {
	if c.lqipSize < minLQIPSize || c.lqipSize > maxLQIPSize {
		c.lqipSize = defaultLQIPSize
	}
	if c.lqipBlurRadius < minLQIPBlurRadius || c.lqipBlurRadius > maxLQIPBlurRadius {
		c.lqipBlurRadius = defaultLQIPBlurRadius
	}

	c.imageTransitionEffect = sanitizeEffect(c.imageTransitionEffect)
	c.imageLQIPTransitionEffect = sanitizeEffect(c.imageLQIPTransitionEffect)
	c.iframeTransitionEffect = sanitizeEffect(c.iframeTransitionEffect)

	for _, d := range []*time.Duration{
		&c.imageTransitionTime,
		&c.imageTransitionDelay,
		&c.imageLQIPTransitionTime,
		&c.imageLQIPTransitionDelay,
		&c.iframeTransitionTime,
		&c.iframeTransitionDelay,
	} {
		if *d < 0 {
			*d = 0
		}
	}

	c.placeholderColor = strings.TrimRight(strings.TrimSpace(c.placeholderColor), ";")
}

func sanitizeEffect(effect string) string {
	for _, allowed := range transitionEffects {
		if effect == allowed {
			return effect
		}
	}
	return transitionEffects[0]
}

// renderingView lists every field that changes emitted markup or snippets.
// Field order is fixed, so its JSON encoding is canonical.
type renderingView struct {
	EnableOnImages             bool   `json:"enable_on_images"`
	EnableOnIframes            bool   `json:"enable_on_iframes"`
	PreloadEnable              bool   `json:"preload_enable"`
	ExpandValue                *int   `json:"expand_value"`
	CustomSettings             string `json:"custom_settings"`
	PlaceholdersDisable        bool   `json:"placeholders_disable"`
	PlaceholderColor           string `json:"placeholder_color"`
	LQIPEnable                 bool   `json:"lqip_enable"`
	LQIPBlurRadius             int    `json:"lqip_blur_radius"`
	LQIPSize                   int    `json:"lqip_size"`
	LQIPBase64Enable           bool   `json:"lqip_base64_enable"`
	ImageAverageColorBgEnable  bool   `json:"image_average_color_bg_enable"`
	IframeAverageColorBgEnable bool   `json:"iframe_average_color_bg_enable"`
	IframeResponsiveFix        bool   `json:"iframe_responsive_fix"`
	ImageTransitionTime        int64  `json:"image_transition_time"`
	ImageTransitionDelay       int64  `json:"image_transition_delay"`
	ImageTransitionEffect      string `json:"image_transition_effect"`
	ImageLQIPTransitionTime    int64  `json:"image_lqip_transition_time"`
	ImageLQIPTransitionDelay   int64  `json:"image_lqip_transition_delay"`
	ImageLQIPTransitionEffect  string `json:"image_lqip_transition_effect"`
	IframeTransitionTime       int64  `json:"iframe_transition_time"`
	IframeTransitionDelay      int64  `json:"iframe_transition_delay"`
	IframeTransitionEffect     string `json:"iframe_transition_effect"`
	NoscriptEnable             bool   `json:"noscript_enable"`
	CacheEnable                bool   `json:"cache_enable"`
	Prefix                     string `json:"prefix"`
	BaseURL                    string `json:"base_url"`
}

// Fingerprint is a short deterministic digest of every rendering-relevant
// field. Fetch tuning (timeouts, retries, user agent) is excluded since it
// never changes a successful rendering.
func (c Config) Fingerprint() string {
	view := renderingView{
		EnableOnImages:             c.enableOnImages,
		EnableOnIframes:            c.enableOnIframes,
		PreloadEnable:              c.preloadEnable,
		ExpandValue:                c.expandValue,
		CustomSettings:             c.customSettings,
		PlaceholdersDisable:        c.placeholdersDisable,
		PlaceholderColor:           c.placeholderColor,
		LQIPEnable:                 c.lqipEnable,
		LQIPBlurRadius:             c.lqipBlurRadius,
		LQIPSize:                   c.lqipSize,
		LQIPBase64Enable:           c.lqipBase64Enable,
		ImageAverageColorBgEnable:  c.imageAverageColorBgEnable,
		IframeAverageColorBgEnable: c.iframeAverageColorBgEnable,
		IframeResponsiveFix:        c.iframeResponsiveFix,
		ImageTransitionTime:        c.imageTransitionTime.Milliseconds(),
		ImageTransitionDelay:       c.imageTransitionDelay.Milliseconds(),
		ImageTransitionEffect:      c.imageTransitionEffect,
		ImageLQIPTransitionTime:    c.imageLQIPTransitionTime.Milliseconds(),
		ImageLQIPTransitionDelay:   c.imageLQIPTransitionDelay.Milliseconds(),
		ImageLQIPTransitionEffect:  c.imageLQIPTransitionEffect,
		IframeTransitionTime:       c.iframeTransitionTime.Milliseconds(),
		IframeTransitionDelay:      c.iframeTransitionDelay.Milliseconds(),
		IframeTransitionEffect:     c.iframeTransitionEffect,
		NoscriptEnable:             c.noscriptEnable,
		CacheEnable:                c.cacheEnable,
		Prefix:                     c.prefix,
	}
	if c.baseURL != nil {
		view.BaseURL = c.baseURL.String()
	}
	// renderingView holds only plain values; Marshal cannot fail.
	raw, _ := json.Marshal(view)
	return hashutil.Fingerprint(raw)
}

func (c Config) EnableOnImages() bool {
	return c.enableOnImages
}

func (c Config) EnableOnIframes() bool {
	return c.enableOnIframes
}

func (c Config) PreloadEnable() bool {
	return c.preloadEnable
}

// ExpandValue returns the configured viewport margin and whether one was set.
func (c Config) ExpandValue() (int, bool) {
	if c.expandValue == nil {
		return 0, false
	}
	return *c.expandValue, true
}

func (c Config) CustomSettings() string {
	return c.customSettings
}

func (c Config) PlaceholdersDisable() bool {
	return c.placeholdersDisable
}

func (c Config) PlaceholderColor() string {
	return c.placeholderColor
}

func (c Config) LQIPEnable() bool {
	return c.lqipEnable
}

func (c Config) LQIPBlurRadius() int {
	return c.lqipBlurRadius
}

func (c Config) LQIPSize() int {
	return c.lqipSize
}

func (c Config) LQIPBase64Enable() bool {
	return c.lqipBase64Enable
}

func (c Config) ImageAverageColorBgEnable() bool {
	return c.imageAverageColorBgEnable
}

func (c Config) IframeAverageColorBgEnable() bool {
	return c.iframeAverageColorBgEnable
}

func (c Config) IframeResponsiveFix() bool {
	return c.iframeResponsiveFix
}

func (c Config) ImageTransitionTime() time.Duration {
	return c.imageTransitionTime
}

func (c Config) ImageTransitionDelay() time.Duration {
	return c.imageTransitionDelay
}

func (c Config) ImageTransitionEffect() string {
	return c.imageTransitionEffect
}

func (c Config) ImageLQIPTransitionTime() time.Duration {
	return c.imageLQIPTransitionTime
}

func (c Config) ImageLQIPTransitionDelay() time.Duration {
	return c.imageLQIPTransitionDelay
}

func (c Config) ImageLQIPTransitionEffect() string {
	return c.imageLQIPTransitionEffect
}

func (c Config) IframeTransitionTime() time.Duration {
	return c.iframeTransitionTime
}

func (c Config) IframeTransitionDelay() time.Duration {
	return c.iframeTransitionDelay
}

func (c Config) IframeTransitionEffect() string {
	return c.iframeTransitionEffect
}

func (c Config) NoscriptEnable() bool {
	return c.noscriptEnable
}

func (c Config) CacheEnable() bool {
	return c.cacheEnable
}

func (c Config) Prefix() string {
	return c.prefix
}

func (c Config) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

func (c Config) FetchMaxAttempts() int {
	return c.fetchMaxAttempts
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxImageBytes() int64 {
	return c.maxImageBytes
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) BaseURL() *url.URL {
	if c.baseURL == nil {
		return nil
	}
	u := *c.baseURL
	return &u
}
