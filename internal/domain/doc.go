// Package domain models DWD weather-warning data and the pure transforms of
// the warnings pipeline: AOI extraction, bounding-box derivation, property
// normalization, and response assembly.
//
// # Data Source
//
// Warning polygons come from the DWD GeoServer WFS at
// https://maps.dwd.de/geoserver/dwd/ows (WFS 2.0.0). The default layer is
// dwd:Warnungen_Gemeinden_vereinigt, the municipality-level union of active
// warnings. Layers answer GetFeature requests with GeoJSON when asked for
// outputFormat=application/json.
//
// # Coordinate Reference Systems
//
// Clients draw the area of interest in EPSG:4326 (lon,lat). The WFS bbox
// filter is expressed in CRS:84, which is also lon,lat, so coordinates pass
// through unchanged. No reprojection happens anywhere in this package.
//
// # Attribute Conventions
//
// DWD layers are inconsistent about attribute naming: CAP-derived layers ship
// uppercase keys (HEADLINE, SEVERITY, ONSET, EXPIRES, AREADESC), GeoServer
// sometimes lowercases them, and legacy layers use German column names
// (GUELTIG_BIS, WARNSTUFE). Normalization resolves each semantic field
// through an ordered candidate-key list, first present non-empty value wins.
// Empty strings and nulls count as absent so lookups fall through.
//
// The canonical output schema keeps the German keys of the original service:
// kurztext, gueltig_ab, gueltig_bis (plus *_local display variants), severity
// and gebiet. Identifier-like attributes (WARNCELLID, EC_II, EC_GROUP, ...)
// are copied through verbatim when present.
//
// # Timestamps
//
// Validity times arrive either as epoch seconds or as ISO-8601 text; a
// trailing "Z" means UTC. Raw values are always surfaced alongside the parsed
// form so consumers can choose. Display variants are rendered in a configured
// zone (default Europe/Berlin) as "2006-01-02 15:04 MST", falling back to the
// full ISO form when the zone database is unavailable.
package domain
