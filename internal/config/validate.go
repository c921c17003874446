package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/forPelevin/hlshorts/internal/ports/adapters/openrouter"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	case ProviderOpenRouter:
		if err := validateBaseURL(c.LLM.BaseURL, c.LLM.AllowedHosts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("llm.provider %q is not one of openai, openrouter, gemini", c.LLM.Provider)
	}
	if c.LLM.MaxRetries < 1 {
		return errors.New("llm.max_retries must be at least 1")
	}
	if c.LLM.MinDuration <= 0 {
		return errors.New("llm.min_duration must be > 0")
	}
	if c.LLM.MinDuration > c.LLM.MaxDuration {
		return fmt.Errorf("llm.min_duration (%g) must be <= llm.max_duration (%g)", c.LLM.MinDuration, c.LLM.MaxDuration)
	}
	if c.LLM.Timeout < 0 {
		return errors.New("llm.timeout must not be negative")
	}
	return nil
}

// validateBaseURL accepts an absolute https URL on an allowed host. Requests
// carry the API key, so credentials, queries and fragments are refused.
func validateBaseURL(raw string, allowed []string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = openrouter.DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("llm.base_url: %w", err)
	}
	hosts := allowedHosts(allowed)
	var problem string
	switch {
	case !u.IsAbs() || u.Hostname() == "":
		problem = "an absolute URL with a host is required"
	case u.Scheme != "https":
		problem = "https is required"
	case u.User != nil:
		problem = "credentials are not allowed"
	case u.RawQuery != "" || u.Fragment != "":
		problem = "query and fragment are not allowed"
	case !slices.Contains(hosts, strings.ToLower(u.Hostname())):
		problem = fmt.Sprintf("host %q is not in llm.allowed_hosts %v", u.Hostname(), hosts)
	}
	if problem != "" {
		return fmt.Errorf("llm.base_url %q: %s", raw, problem)
	}
	return nil
}

// allowedHosts reduces allowlist entries to lowercase host names. An empty
// result means the public OpenRouter hosts.
func allowedHosts(entries []string) []string {
	var out []string
	for _, e := range entries {
		if h := hostName(e); h != "" {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return openrouter.DefaultHosts
	}
	return out
}

// hostName strips scheme, port and path from an entry like "https://Proxy:8443/".
func hostName(entry string) string {
	h := strings.ToLower(strings.TrimSpace(entry))
	if _, rest, ok := strings.Cut(h, "://"); ok {
		h = rest
	}
	h, _, _ = strings.Cut(h, "/")
	h, _, _ = strings.Cut(h, ":")
	return h
}

func (c *Config) validateRender() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New("render.width and render.height must be > 0")
	}
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		return errors.New("render.width and render.height must be even")
	}
	if c.Render.FPS <= 0 {
		return errors.New("render.fps must be > 0")
	}
	if c.Render.BlurSigma <= 0 {
		return errors.New("render.blur_sigma must be > 0")
	}
	if c.Render.Fade < 0 {
		return errors.New("render.fade must not be negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone, "":
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not one of file, redis, none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.YouTubeCredentials == "" {
		return nil
	}
	switch c.Publish.YouTubePrivacy {
	case "private", "unlisted", "public":
		return nil
	default:
		return fmt.Errorf("publish.youtube_privacy %q is not one of private, unlisted, public", c.Publish.YouTubePrivacy)
	}
}

func (c *Config) validateLog() error {
	switch c.Log.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
}
