package domain

import (
	"encoding/json"
	"time"
)

// upstreamFeature is the subset of a WFS feature the assembler touches. The
// geometry is never decoded so it reaches the response untouched.
type upstreamFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// WarningFeature is one normalized output feature.
type WarningFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// SummaryEntry mirrors one feature in condensed form for list-view rendering.
// Local display times fall back to the raw value when parsing failed.
type SummaryEntry struct {
	Kurztext        any `json:"kurztext"`
	GueltigAbLocal  any `json:"gueltig_ab_local"`
	GueltigBisLocal any `json:"gueltig_bis_local"`
	Severity        any `json:"severity"`
	Gebiet          any `json:"gebiet"`
}

// Meta describes the query behind a response envelope. Count always equals
// len(features) of the envelope carrying it.
type Meta struct {
	Source      string         `json:"source"`
	Endpoint    string         `json:"endpoint"`
	TypeName    string         `json:"typeName"`
	BBox        [4]float64     `json:"bbox"`
	Count       int            `json:"count"`
	GeneratedAt string         `json:"generated_at"`
	Summary     []SummaryEntry `json:"summary"`
}

// Envelope is the final FeatureCollection returned to the caller.
type Envelope struct {
	Type     string           `json:"type"`
	Features []WarningFeature `json:"features"`
	Meta     Meta             `json:"meta"`
}

// AssembleInput carries everything the assembler needs for one response.
type AssembleInput struct {
	Raw        *FeatureCollection
	BBox       BoundingBox
	Endpoint   string
	TypeName   string
	IncludeRaw bool // attach the original property mapping under properties_raw
}

// rawPropertiesKey carries the untouched upstream properties when the caller
// opts in to full-fidelity output.
const rawPropertiesKey = "properties_raw"

// AssembleResponse combines normalized features with summary metadata into
// the response envelope. Entries that are not valid Features are skipped, not
// treated as errors; a feature whose properties fail to decode keeps its
// geometry and gets an empty property set.
func (n *Normalizer) AssembleResponse(in AssembleInput) Envelope {
	features := make([]WarningFeature, 0, len(in.Raw.Features))
	summary := make([]SummaryEntry, 0, len(in.Raw.Features))

	for _, entry := range in.Raw.Features {
		var f upstreamFeature
		if err := json.Unmarshal(entry, &f); err != nil || f.Type != "Feature" {
			continue
		}

		props := map[string]any{}
		if len(f.Properties) > 0 {
			// tolerate non-object properties by treating them as empty
			_ = json.Unmarshal(f.Properties, &props)
			if props == nil {
				props = map[string]any{}
			}
		}

		norm := n.NormalizeProperties(props)
		if in.IncludeRaw {
			norm[rawPropertiesKey] = props
		}

		features = append(features, WarningFeature{
			Type:       "Feature",
			Geometry:   f.Geometry,
			Properties: norm,
		})
		summary = append(summary, SummaryEntry{
			Kurztext:        norm["kurztext"],
			GueltigAbLocal:  firstNonNil(norm["gueltig_ab_local"], norm["gueltig_ab"]),
			GueltigBisLocal: firstNonNil(norm["gueltig_bis_local"], norm["gueltig_bis"]),
			Severity:        norm["severity"],
			Gebiet:          norm["gebiet"],
		})
	}

	return Envelope{
		Type:     "FeatureCollection",
		Features: features,
		Meta: Meta{
			Source:      "DWD WFS",
			Endpoint:    in.Endpoint,
			TypeName:    in.TypeName,
			BBox:        in.BBox.List(),
			Count:       len(features),
			GeneratedAt: clock.Now().UTC().Format(time.RFC3339),
			Summary:     summary,
		},
	}
}

func firstNonNil(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
