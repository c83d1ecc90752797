package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vpoint-tv/vpoint-api/model"
)

type fieldKind int

const (
	kindBool fieldKind = iota
	kindColor
	kindText
)

type configField struct {
	column string
	kind   fieldKind
	get    func(model.SiteConfig) interface{}
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

const maxBrandingLength = 255

// configFields is the closed set of keys a patch may touch
var configFields = map[string]configField{
	"accentColor":     {"accent_color", kindColor, func(c model.SiteConfig) interface{} { return c.AccentColor }},
	"brandingText":    {"branding_text", kindText, func(c model.SiteConfig) interface{} { return c.BrandingText }},
	"showHero":        {"show_hero", kindBool, func(c model.SiteConfig) interface{} { return c.ShowHero }},
	"showFeatures":    {"show_features", kindBool, func(c model.SiteConfig) interface{} { return c.ShowFeatures }},
	"showWhatsNew":    {"show_whats_new", kindBool, func(c model.SiteConfig) interface{} { return c.ShowWhatsNew }},
	"showFAQ":         {"show_faq", kindBool, func(c model.SiteConfig) interface{} { return c.ShowFAQ }},
	"maintenanceMode": {"maintenance_mode", kindBool, func(c model.SiteConfig) interface{} { return c.MaintenanceMode }},
	"adSenseActive":   {"ad_sense_active", kindBool, func(c model.SiteConfig) interface{} { return c.AdSenseActive }},
}

// ConfigKeys lists the recognised configuration keys in a stable order
func ConfigKeys() []string {
	keys := make([]string, 0, len(configFields))
	for k := range configFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigPatch is a validated partial update of the site configuration
type ConfigPatch struct {
	values map[string]interface{}
}

// NewConfigPatch validates raw key/value pairs against the typed field set
func NewConfigPatch(raw map[string]interface{}) (ConfigPatch, error) {
	p := ConfigPatch{values: make(map[string]interface{}, len(raw))}
	for key, value := range raw {
		field, ok := configFields[key]
		if !ok {
			return ConfigPatch{}, invalid(key, "unknown configuration key")
		}
		v, err := field.coerce(key, value)
		if err != nil {
			return ConfigPatch{}, err
		}
		p.values[key] = v
	}
	return p, nil
}

// ParseConfigPatchJSON decodes a JSON object body into a patch. The JSON type
// of every value is checked, so "true" (a string) is not accepted for a flag.
func ParseConfigPatchJSON(body []byte) (ConfigPatch, error) {
	if !gjson.ValidBytes(body) {
		return ConfigPatch{}, invalid("", "request body is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return ConfigPatch{}, invalid("", "request body must be a JSON object")
	}

	raw := make(map[string]interface{})
	doc.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.True, gjson.False:
			raw[key.String()] = value.Bool()
		case gjson.String:
			raw[key.String()] = value.String()
		default:
			raw[key.String()] = value.Value()
		}
		return true
	})
	return NewConfigPatch(raw)
}

func (f configField) coerce(key string, value interface{}) (interface{}, error) {
	switch f.kind {
	case kindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, invalid(key, "must be a boolean")
		}
		return b, nil
	case kindColor:
		s, ok := value.(string)
		if !ok {
			return nil, invalid(key, "must be a string")
		}
		s = strings.TrimSpace(s)
		if !colorPattern.MatchString(s) {
			return nil, invalid(key, "must be a hex color such as %s", model.DefaultAccentColor)
		}
		return strings.ToLower(s), nil
	default:
		s, ok := value.(string)
		if !ok {
			return nil, invalid(key, "must be a string")
		}
		if len(s) > maxBrandingLength {
			return nil, invalid(key, "must be at most %d characters", maxBrandingLength)
		}
		return s, nil
	}
}

// Keys returns the keys present in the patch, sorted
func (p ConfigPatch) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len reports how many keys the patch sets
func (p ConfigPatch) Len() int {
	return len(p.values)
}

// Value returns the validated value for key
func (p ConfigPatch) Value(key string) (interface{}, bool) {
	v, ok := p.values[key]
	return v, ok
}

// changes returns the subset of the patch that differs from cur, keyed by
// JSON name, together with the matching column updates.
func (p ConfigPatch) changes(cur model.SiteConfig) (map[string]interface{}, map[string]interface{}) {
	changed := make(map[string]interface{})
	columns := make(map[string]interface{})
	for key, v := range p.values {
		field := configFields[key]
		if field.get(cur) == v {
			continue
		}
		changed[key] = v
		columns[field.column] = v
	}
	return changed, columns
}

// describeChanges renders "key=value" pairs in key order
func describeChanges(changed map[string]interface{}) string {
	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, changed[k]))
	}
	return strings.Join(parts, ", ")
}
