package subscription

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// plainTextThreshold is how many scheme tokens mark a payload as plain node
// lines rather than a config document.
const plainTextThreshold = 5

var (
	schemeToken  = regexp.MustCompile(`(?i)(?:vmess|vless|trojan|ss|ssr|hysteria)://`)
	inlineNested = regexp.MustCompile(`-\s*(\{[^}]*\{[^}]*\}[^}]*\})`)
	inlineFlat   = regexp.MustCompile(`-\s*(\{.+\})`)
)

func (d *Decoder) decodeStructured(raw string) ([]string, error) {
	text := strings.TrimSpace(raw)
	if len(schemeToken.FindAllStringIndex(text, plainTextThreshold+1)) > plainTextThreshold {
		return nil, ErrPlainNodeText
	}

	descriptors, err := ParseDescriptors(text)
	if err == nil {
		if nodes := d.convertAll(descriptors); len(nodes) > 0 {
			return nodes, nil
		}
		return nil, ErrNoNodes
	}

	if strings.Contains(text, "proxies") {
		if nodes := d.convertAll(inlineDescriptors(text)); len(nodes) > 0 {
			return nodes, nil
		}
	}
	return nil, err
}

func (d *Decoder) convertAll(descriptors []Descriptor) []string {
	nodes := make([]string, 0, len(descriptors))
	for i, desc := range descriptors {
		uri, err := d.converter.Convert(desc)
		if err != nil {
			d.logger.Debug("descriptor skipped", "index", i, "error", err)
			continue
		}
		nodes = append(nodes, uri)
	}
	return nodes
}

// ParseDescriptors reads a JSON or YAML document holding either a bare list
// of proxies or a mapping with a "proxies" list.
func ParseDescriptors(text string) ([]Descriptor, error) {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		doc = nil
		if yerr := yaml.Unmarshal([]byte(text), &doc); yerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, yerr)
		}
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any, map[any]any:
		list, ok := asDescriptor(v)["proxies"].([]any)
		if !ok {
			return nil, ErrNoDescriptors
		}
		items = list
	default:
		return nil, ErrNoDescriptors
	}

	descriptors := make([]Descriptor, 0, len(items))
	for _, item := range items {
		if desc := asDescriptor(item); len(desc) > 0 {
			descriptors = append(descriptors, desc)
		}
	}
	return descriptors, nil
}

// inlineDescriptors recovers "- {...}" flow entries line by line from a
// document that failed to parse as a whole. Broken entries are skipped.
func inlineDescriptors(text string) []Descriptor {
	var descriptors []Descriptor

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		var fragments []string
		for _, m := range inlineNested.FindAllStringSubmatch(line, -1) {
			fragments = append(fragments, m[1])
		}
		if len(fragments) == 0 {
			if m := inlineFlat.FindStringSubmatch(line); m != nil {
				fragments = append(fragments, m[1])
			}
		}

		for _, f := range fragments {
			if desc, ok := parseFragment(f); ok {
				descriptors = append(descriptors, desc)
			}
		}
	}
	return descriptors
}

func parseFragment(f string) (Descriptor, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(f), &m); err == nil {
		return Descriptor(m), true
	}
	m = nil
	if err := yaml.Unmarshal([]byte(f), &m); err == nil && len(m) > 0 {
		return Descriptor(m), true
	}
	return nil, false
}
