package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// flatOption is a webclient option written as a plain number whose unit is
// part of its name, such as webclient.connectTimeoutMillis.
type flatOption struct {
	name   string
	target string
	// unit converts the number to a duration; zero copies the value as is
	unit time.Duration
}

var flatOptions = []flatOption{
	{name: "maxAttempts", target: "webclient.retry.maxattempts"},
	{name: "initialBackoffSeconds", target: "webclient.retry.initialbackoff", unit: time.Second},
	{name: "maxBackoffSeconds", target: "webclient.retry.maxbackoff", unit: time.Second},
	{name: "jitterFraction", target: "webclient.retry.jitter"},
	{name: "connectTimeoutMillis", target: "webclient.timeout.connect", unit: time.Millisecond},
	{name: "responseTimeoutSeconds", target: "webclient.timeout.response", unit: time.Second},
	{name: "readTimeoutSeconds", target: "webclient.timeout.read", unit: time.Second},
	{name: "writeTimeoutSeconds", target: "webclient.timeout.write", unit: time.Second},
	{name: "maxInMemoryResponseSizeMB", target: "webclient.maxinmemoryresponsesizemb"},
}

// applyFlatOptions copies flat options onto their structured keys. A flat
// option overrides the structured key it maps to. Both the camelCase YAML
// spelling and the lowercase environment spelling are recognized.
func applyFlatOptions(k *koanf.Koanf) error {
	overrides := make(map[string]any)
	for _, opt := range flatOptions {
		key, ok := lookupFlat(k, opt.name)
		if !ok {
			continue
		}
		value, err := flatValue(k.Get(key), opt.unit)
		if err != nil {
			return NewValidationError(key, err.Error())
		}
		overrides[opt.target] = value
	}
	if len(overrides) == 0 {
		return nil
	}
	return k.Load(confmap.Provider(overrides, "."), nil)
}

func lookupFlat(k *koanf.Koanf, name string) (string, bool) {
	for _, key := range []string{"webclient." + name, "webclient." + strings.ToLower(name)} {
		if k.Exists(key) {
			return key, true
		}
	}
	return "", false
}

func flatValue(raw any, unit time.Duration) (any, error) {
	text := strings.TrimSpace(fmt.Sprint(raw))
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("must be a number, got %q", text)
	}
	if unit == 0 {
		return raw, nil
	}
	if n < 0 {
		return nil, fmt.Errorf("must not be negative, got %s", text)
	}
	return time.Duration(n * float64(unit)).String(), nil
}
