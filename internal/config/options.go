package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Option keys shared by flags, environment and viper lookups.
const (
	KeySource    = "src"
	KeyOutput    = "out"
	KeyConfig    = "config"
	KeyTemplates = "templates"
	KeySanitize  = "sanitize"
	KeyClean     = "clean"
	KeyStrict    = "strict"
	KeyPort      = "port"
	KeyVerbose   = "verbose"
)

// Defaults for runtime options.
const (
	DefaultSource = "docs"
	DefaultOutput = "_site"
	DefaultPort   = 3000
)

// Options are the runtime settings of one process.
type Options struct {
	Source      string
	Output      string
	SiteFile    string
	TemplateDir string
	Sanitize    bool
	Clean       bool
	// Strict turns skipped source files into a failed build.
	Strict      bool
	Port        int
	Verbose     bool
}

// NewViper returns a viper instance with defaults and environment bindings.
// Every key is readable as DOCSITE_<KEY>; the port also honours a bare PORT.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeySource, DefaultSource)
	v.SetDefault(KeyOutput, DefaultOutput)
	v.SetDefault(KeyConfig, DefaultSiteFile)
	v.SetDefault(KeyPort, DefaultPort)

	v.SetEnvPrefix("DOCSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyPort, "DOCSITE_PORT", "PORT")
	return v
}

// LoadOptions resolves Options from v and validates them.
func LoadOptions(v *viper.Viper) (Options, error) {
	opts := Options{
		Source:      v.GetString(KeySource),
		Output:      v.GetString(KeyOutput),
		SiteFile:    v.GetString(KeyConfig),
		TemplateDir: v.GetString(KeyTemplates),
		Sanitize:    v.GetBool(KeySanitize),
		Clean:       v.GetBool(KeyClean),
		Strict:      v.GetBool(KeyStrict),
		Port:        v.GetInt(KeyPort),
		Verbose:     v.GetBool(KeyVerbose),
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks option values that would otherwise fail late.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Source) == "" {
		return fmt.Errorf("source directory must not be empty")
	}
	if strings.TrimSpace(o.Output) == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	return nil
}
