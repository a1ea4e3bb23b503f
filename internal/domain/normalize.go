package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Candidate keys per semantic field, evaluated in order, first present
// non-empty value wins. Kept as data so the normalization contract stays
// auditable in one place. The casing variants reflect what DWD layers
// actually ship: CAP uppercase, GeoServer lowercase, legacy German columns.
var (
	headlineKeys = []string{"HEADLINE", "headline", "Headline", "EVENT", "event", "DESCRIPTION", "description"}
	expiresKeys  = []string{"EXPIRES", "expires", "Expires", "GUELTIG_BIS", "gueltig_bis", "VALID_UNTIL", "valid_until"}
	onsetKeys    = []string{"ONSET", "onset", "Onset", "EFFECTIVE", "effective"}
	severityKeys = []string{"SEVERITY", "severity", "WARNSTUFE", "warnstufe", "LEVEL", "level"}
	areaKeys     = []string{"AREADESC", "areadesc", "NAME", "name"}

	// Identifier-like fields copied through verbatim when present.
	passthroughKeys = []string{"WARNCELLID", "warncellid", "ID", "id", "EC_II", "EC_GROUP", "EVENT", "STATUS", "MSGTYPE"}
)

// localTimeLayout renders display timestamps, e.g. "2026-02-11 14:30 CET".
const localTimeLayout = "2006-01-02 15:04 MST"

// Normalizer maps heterogeneous upstream warning attributes onto the
// canonical output schema. The zone controls the *_local display variants.
type Normalizer struct {
	loc *time.Location // nil when the zone database is unavailable
}

// NewNormalizer builds a Normalizer rendering display times in the named
// zone. When the zone cannot be loaded the returned Normalizer still works
// and falls back to ISO timestamps; the error tells the caller to log it.
func NewNormalizer(zone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return &Normalizer{}, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return &Normalizer{loc: loc}, nil
}

// NormalizeProperties produces the canonical property mapping for one
// upstream feature. Absent fields are null; both raw and locale-formatted
// variants of the two validity times are always present so downstream
// consumers can choose.
func (n *Normalizer) NormalizeProperties(props map[string]any) map[string]any {
	headline := pick(props, headlineKeys)
	expiresRaw := pick(props, expiresKeys)
	onsetRaw := pick(props, onsetKeys)
	severity := pick(props, severityKeys)
	area := pick(props, areaKeys)

	out := map[string]any{
		"kurztext":          headline,
		"gueltig_bis":       expiresRaw,
		"gueltig_bis_local": n.formatLocal(parseWhen(expiresRaw)),
		"gueltig_ab":        onsetRaw,
		"gueltig_ab_local":  n.formatLocal(parseWhen(onsetRaw)),
		"severity":          severity,
		"gebiet":            area,
	}

	for _, k := range passthroughKeys {
		if v, ok := props[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			out[k] = v
		}
	}

	return out
}

// pick returns the first present, non-empty value among the candidate keys.
// Empty strings and nulls count as absent so the lookup falls through.
func pick(props map[string]any, keys []string) any {
	for _, k := range keys {
		v, ok := props[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return nil
}

// parseWhen interprets a raw validity value as a point in time. Numbers are
// epoch seconds; strings are ISO-8601, where a trailing "Z" means UTC and a
// missing offset is read as UTC. Unparseable or absent values report !ok; the
// raw value is still surfaced by the caller.
func parseWhen(v any) (time.Time, bool) {
	switch val := v.(type) {
	case float64:
		sec, frac := math.Modf(val)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// formatLocal renders a parsed time for display, or nil when parsing failed.
func (n *Normalizer) formatLocal(t time.Time, ok bool) any {
	if !ok {
		return nil
	}
	if n.loc == nil {
		return t.Format(time.RFC3339)
	}
	return t.In(n.loc).Format(localTimeLayout)
}
