package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wanze/AppTranslator/internal/client"
	"github.com/wanze/AppTranslator/internal/decoder"
	"github.com/wanze/AppTranslator/internal/translation"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig
	Client  ClientConfig
	Web     WebConfig
	Log     LogConfig
	Langs   LangsConfig
	Decoder DecoderConfig
}

// ServerConfig points at the translation service.
type ServerConfig struct {
	URL string
}

// ClientConfig bounds outbound calls. Zero means no timeout.
type ClientConfig struct {
	Timeout time.Duration
}

// WebConfig holds the front-end listener.
type WebConfig struct {
	Addr string
}

type LogConfig struct {
	Level string
}

// LangsConfig is the language pair a session starts with.
type LangsConfig struct {
	Source string
	Target string
}

// DecoderConfig is the decoder selected at start and the settings of every
// backend, e.g. decoder.moses.weight_d.
type DecoderConfig struct {
	Kind           string
	decoder.Config `mapstructure:",squash"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"server-url": "server.url",
	"timeout":    "client.timeout",
	"addr":       "web.addr",
	"log-level":  "log.level",
}

// DefaultPath is where Load looks for a config file when none is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "apptranslator", "config.yaml")
}

// Load reads configuration from defaults, an optional file, env and flags,
// in increasing precedence. Env var overrides use prefix APPTRANSLATOR_.
// An explicit cfgFile must exist; the default one is optional.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.url", client.DefaultBaseURL)
	v.SetDefault("client.timeout", time.Duration(0))
	v.SetDefault("web.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("langs.source", "en")
	v.SetDefault("langs.target", "fr")
	v.SetDefault("decoder.kind", string(decoder.Moses))
	setDecoderDefaults(v, decoder.DefaultConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("APPTRANSLATOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// setDecoderDefaults registers every backend field so env vars such as
// APPTRANSLATOR_DECODER_SOLR_ROWS are picked up on Unmarshal.
func setDecoderDefaults(v *viper.Viper, cfg decoder.Config) {
	for _, kind := range decoder.Backends {
		settings, err := cfg.For(kind)
		if err != nil {
			continue
		}
		for _, f := range settings.Fields() {
			v.SetDefault("decoder."+string(kind)+"."+f.Name, f.Value)
		}
	}
}

// Validate checks the values that cannot be decoded into a usable session.
func (c Config) Validate() error {
	if _, err := decoder.ParseKind(c.Decoder.Kind); err != nil {
		return fmt.Errorf("decoder.kind: %w", err)
	}
	if _, err := c.Languages(); err != nil {
		return fmt.Errorf("langs: %w", err)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative")
	}
	return nil
}

// Selection returns the configured decoder and settings.
func (c Config) Selection() decoder.Selection {
	kind, err := decoder.ParseKind(c.Decoder.Kind)
	if err != nil {
		kind = decoder.Moses
	}
	return decoder.Selection{Kind: kind, Config: c.Decoder.Config}
}

// Languages returns the configured pair. The source may be
// translation.AutoDetect.
func (c Config) Languages() (translation.LanguagePair, error) {
	if c.Langs.Source == translation.AutoDetect {
		dst, err := translation.ValidateLanguage(c.Langs.Target)
		if err != nil {
			return translation.LanguagePair{}, fmt.Errorf("target: %w", err)
		}
		return translation.LanguagePair{Source: translation.AutoDetect, Target: dst}, nil
	}
	return translation.LanguagePair{Source: c.Langs.Source, Target: c.Langs.Target}.Normalize()
}
