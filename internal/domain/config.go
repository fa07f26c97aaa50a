package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultMaxFileSize   int64 = 1 << 20 // 1 MiB
	DefaultCacheTTL            = time.Hour
	DefaultCacheFile           = ".kraftlint/cache/discovery.json"
	DefaultParseCacheCap       = 256
)

// DefaultExtensions are analyzed when discovery.extensions is empty.
var DefaultExtensions = []string{".go"}

// RunConfig is the fully resolved configuration for one run.
type RunConfig struct {
	Roots      []string         `yaml:"roots"       json:"roots"       validate:"required,min=1,dive,required"`
	Rules      []string         `yaml:"rules"       json:"rules"       validate:"required,min=1,dive,required"`
	Discovery  DiscoveryConfig  `yaml:"discovery"   json:"discovery"`
	Report     ReportConfig     `yaml:"report"      json:"report"`
	Execution  ExecutionConfig  `yaml:"execution"   json:"execution"`
	ParseCache ParseCacheConfig `yaml:"parse_cache" json:"parse_cache"`
}

// DiscoveryConfig tunes file discovery and its cache.
type DiscoveryConfig struct {
	MaxFileSize int64         `yaml:"max_file_size" json:"max_file_size" validate:"gte=0"`
	CacheTTL    time.Duration `yaml:"cache_ttl"     json:"cache_ttl"     validate:"gte=0"`
	TrackMTime  *bool         `yaml:"track_mtime"   json:"track_mtime,omitempty"`
	Exclude     []string      `yaml:"exclude"       json:"exclude,omitempty"  validate:"dive,required"`
	Extensions  []string      `yaml:"extensions"    json:"extensions,omitempty" validate:"dive,required,startswith=."`
	CachePath   string        `yaml:"cache_path"    json:"cache_path,omitempty"`
	NoCache     bool          `yaml:"no_cache"      json:"no_cache,omitempty"`
}

// ReportConfig locates the report sink.
type ReportConfig struct {
	Output string `yaml:"output" json:"output,omitempty"`
}

// ExecutionConfig controls how the rule x file matrix is executed.
type ExecutionConfig struct {
	Workers     int           `yaml:"workers"      json:"workers"      validate:"gte=0,lte=256"`
	RuleTimeout time.Duration `yaml:"rule_timeout" json:"rule_timeout" validate:"gte=0"`
}

// ParseCacheConfig bounds the shared diagnostic cache.
type ParseCacheConfig struct {
	Capacity int `yaml:"capacity" json:"capacity" validate:"gte=0"`
}

// DefaultRunConfig returns a config with discovery defaults filled in and
// no roots or rules.
func DefaultRunConfig() RunConfig {
	track := true
	return RunConfig{
		Discovery: DiscoveryConfig{
			MaxFileSize: DefaultMaxFileSize,
			CacheTTL:    DefaultCacheTTL,
			TrackMTime:  &track,
			Extensions:  append([]string(nil), DefaultExtensions...),
			CachePath:   DefaultCacheFile,
		},
		Execution:  ExecutionConfig{Workers: 1},
		ParseCache: ParseCacheConfig{Capacity: DefaultParseCacheCap},
	}
}

// TrackMTimeEnabled reports whether mtime fingerprints are recorded.
// Unset means enabled.
func (d DiscoveryConfig) TrackMTimeEnabled() bool {
	return d.TrackMTime == nil || *d.TrackMTime
}

// EffectiveExtensions returns the configured extensions or the defaults.
func (d DiscoveryConfig) EffectiveExtensions() []string {
	if len(d.Extensions) == 0 {
		return DefaultExtensions
	}
	return d.Extensions
}

// ConfigIssue is one structural problem with a RunConfig.
type ConfigIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var configValidate = validator.New()

// Validate checks the structure of the config. It does not touch the
// filesystem; root readability is checked by the orchestrator.
func (c RunConfig) Validate() []ConfigIssue {
	var issues []ConfigIssue

	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []ConfigIssue{{Field: "config", Message: err.Error()}}
		}
		for _, fe := range verrs {
			issues = append(issues, ConfigIssue{
				Field:   configFieldName(fe.Namespace()),
				Message: describeFieldError(fe),
			})
		}
	}

	for _, r := range c.Rules {
		if strings.ContainsAny(r, " \t\n") {
			issues = append(issues, ConfigIssue{Field: "rules", Message: fmt.Sprintf("rule identifier %q contains whitespace", r)})
		}
	}

	return issues
}

func configFieldName(ns string) string {
	// "RunConfig.Discovery.MaxFileSize" -> "discovery.maxfilesize"
	ns = strings.TrimPrefix(ns, "RunConfig.")
	return strings.ToLower(ns)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", configFieldName(fe.Namespace()))
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", configFieldName(fe.Namespace()), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", configFieldName(fe.Namespace()), fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got %v)", configFieldName(fe.Namespace()), fe.Param(), fe.Value())
	case "startswith":
		return fmt.Sprintf("%s must start with %q (got %v)", configFieldName(fe.Namespace()), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", configFieldName(fe.Namespace()), fe.Tag())
	}
}
