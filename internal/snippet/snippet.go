package snippet

import (
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/lazyload/internal/config"
)

// Snippets renders the global stylesheet and runtime configuration script
// that accompany rewritten markup. Class names and lazySizesConfig keys
// are read literally by the browser runtime.
type Snippets struct {
	store Store
}

func NewSnippets(store Store) *Snippets {
	return &Snippets{store: store}
}

// Stylesheet returns the inline CSS for cfg. It is empty when no tag kind
// is enabled or placeholders are disabled.
func (s *Snippets) Stylesheet(cfg config.Config) string {
	if (!cfg.EnableOnImages() && !cfg.EnableOnIframes()) || cfg.PlaceholdersDisable() {
		return ""
	}
	return s.cachedOrRender(KeyCSS, cfg, renderCSS)
}

// Script returns the inline lazySizesConfig script for cfg, or empty when
// there is nothing to configure.
func (s *Snippets) Script(cfg config.Config) string {
	if !cfg.EnableOnImages() && !cfg.EnableOnIframes() {
		return ""
	}
	return s.cachedOrRender(KeyJS, cfg, renderJS)
}

// Invalidate drops both snippets.
func (s *Snippets) Invalidate() {
	if s.store == nil {
		return
	}
	s.store.Delete(KeyCSS)
	s.store.Delete(KeyJS)
}

func (s *Snippets) cachedOrRender(key string, cfg config.Config, render func(config.Config) string) string {
	if !cfg.CacheEnable() || s.store == nil {
		return render(cfg)
	}
	fp := cfg.Fingerprint()
	if hit, ok := s.store.Get(key); ok && hit.ConfigFingerprint == fp {
		return hit.Text
	}
	text := render(cfg)
	s.store.Set(key, Entry{ConfigFingerprint: fp, Text: text})
	return text
}

type rule struct {
	selector string
	body     string
}

func renderCSS(cfg config.Config) string {
	p := cfg.Prefix()
	var rules []rule

	color := cfg.PlaceholderColor()
	if color != "" && !strings.Contains(strings.ReplaceAll(color, " ", ""), "0)") {
		rules = append(rules, rule{
			selector: "." + p + "-lazy-image,." + p + "-lazy-iframe",
			body:     "background-color:" + color,
		})
	}

	if cfg.EnableOnImages() {
		if cfg.ImageTransitionTime() > 0 {
			rules = append(rules, rule{
				selector: "." + p + "-lazy-image>." + p + "-lazyitem",
				body:     transition(cfg.ImageTransitionTime(), cfg.ImageTransitionEffect(), cfg.ImageTransitionDelay()),
			})
		}
		if cfg.LQIPEnable() {
			blur := strconv.Itoa(cfg.LQIPBlurRadius())
			rules = append(rules, rule{
				selector: "." + p + "-lazy-image>." + p + "-lazylqip>img",
				body:     "-webkit-filter:blur(" + blur + "px);filter:blur(" + blur + "px);",
			})
			if cfg.ImageLQIPTransitionTime() > 0 {
				rules = append(rules, rule{
					selector: "." + p + "-lazy-image>." + p + "-lazylqip",
					body:     transition(cfg.ImageLQIPTransitionTime(), cfg.ImageLQIPTransitionEffect(), cfg.ImageLQIPTransitionDelay()),
				})
			}
		}
	}

	if cfg.EnableOnIframes() && cfg.IframeTransitionTime() > 0 {
		rules = append(rules, rule{
			selector: "." + p + "-lazy-iframe>." + p + "-lazyitem",
			body:     transition(cfg.IframeTransitionTime(), cfg.IframeTransitionEffect(), cfg.IframeTransitionDelay()),
		})
	}

	var b strings.Builder
	for _, r := range rules {
		b.WriteString(r.selector)
		b.WriteByte('{')
		b.WriteString(r.body)
		b.WriteByte('}')
	}
	return b.String()
}

func transition(duration time.Duration, effect string, delay time.Duration) string {
	value := "opacity " + formatTime(duration) + " " + effect
	if delay > 0 {
		value += " " + formatTime(delay)
	}
	return "-webkit-transition:" + value + ";-o-transition:" + value + ";transition:" + value + ";"
}

// formatTime renders whole milliseconds, switching to seconds from 1000ms.
func formatTime(d time.Duration) string {
	ms := d.Milliseconds()
	if ms >= 1000 {
		return strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64) + "s"
	}
	return strconv.FormatInt(ms, 10) + "ms"
}

func renderJS(cfg config.Config) string {
	var b strings.Builder
	if cfg.PreloadEnable() {
		b.WriteString("\nwindow.lazySizesConfig.preloadAfterLoad = true;")
	}
	if expand, ok := cfg.ExpandValue(); ok {
		if expand == 0 {
			expand = 1
		}
		b.WriteString("\nwindow.lazySizesConfig.expand = " + strconv.Itoa(expand) + ";")
	}
	b.WriteString(cfg.CustomSettings())

	if b.Len() == 0 {
		return ""
	}
	return "window.lazySizesConfig = window.lazySizesConfig || {}; " + b.String()
}
