package decoder

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Apply overwrites backend settings with values keyed "<backend>.<field>",
// e.g. "moses.weight_d". Keys without a backend prefix are ignored. Values
// are decoded weakly so form and flag strings land in numeric fields. On
// error the configuration is left untouched.
func (c *Config) Apply(values map[string]string) error {
	v := viper.New()
	for key, val := range values {
		prefix, field, ok := strings.Cut(strings.ToLower(key), ".")
		if !ok || field == "" || !isBackend(Kind(prefix)) {
			continue
		}
		v.Set(prefix+"."+field, val)
	}

	next := *c
	targets := map[Kind]any{
		Moses:      &next.Moses,
		Solr:       &next.Solr,
		Lamtram:    &next.Lamtram,
		Tensorflow: &next.Tensorflow,
	}
	for _, kind := range Backends {
		if !v.IsSet(string(kind)) {
			continue
		}
		if err := v.UnmarshalKey(string(kind), targets[kind]); err != nil {
			return fmt.Errorf("invalid %s settings: %w", kind, err)
		}
	}

	*c = next
	return nil
}

func isBackend(k Kind) bool {
	for _, b := range Backends {
		if k == b {
			return true
		}
	}
	return false
}
