package subscription

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Descriptor is one Clash-style proxy entry as decoded from JSON or YAML.
// Accessors never fail: a missing or oddly typed field yields its zero value.
type Descriptor map[string]any

// Type is the lower-cased protocol discriminator.
func (d Descriptor) Type() string {
	return strings.ToLower(strings.TrimSpace(d.String("type")))
}

func (d Descriptor) String(key string) string {
	return stringify(d[key])
}

// First returns the first non-empty value among keys.
func (d Descriptor) First(keys ...string) string {
	for _, k := range keys {
		if v := d.String(k); v != "" {
			return v
		}
	}
	return ""
}

func (d Descriptor) StringOr(key, fallback string) string {
	if v := d.String(key); v != "" {
		return v
	}
	return fallback
}

func (d Descriptor) Int(key string, fallback int) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

// Bool follows loose truthiness: true, non-zero numbers and "true"/"1"/"yes".
func (d Descriptor) Bool(key string) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}

// Map returns the nested mapping at key, or an empty descriptor.
func (d Descriptor) Map(key string) Descriptor {
	return asDescriptor(d[key])
}

func (d Descriptor) Has(key string) bool {
	return d.String(key) != ""
}

// SortedKeys lists the keys of d in lexical order.
func (d Descriptor) SortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asDescriptor(v any) Descriptor {
	switch m := v.(type) {
	case Descriptor:
		return m
	case map[string]any:
		return Descriptor(m)
	case map[any]any:
		out := make(Descriptor, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	}
	return Descriptor{}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case map[string]any, map[any]any, []any:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
