package domain

import "fmt"

// BoundingBox is an axis-aligned lon/lat box (minx, miny, maxx, maxy).
// Invariant: min <= max on both axes.
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// String renders the box in WFS bbox parameter order at six fractional
// digits, the same precision the cache key uses.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// List returns the bounds in GeoJSON bbox order for response metadata.
func (b BoundingBox) List() [4]float64 {
	return [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
}

// BoundsFromFeature derives the bounding box of an AOI feature in a single
// linear pass over its coordinates. The geometry must be a Polygon or
// MultiPolygon. No union or overlap refinement happens here: the box is a
// coarse pre-filter and the upstream service intersects its own polygons
// against it.
func BoundsFromFeature(f Feature) (BoundingBox, error) {
	if f.Geometry == nil || f.Geometry.Type == "" {
		return BoundingBox{}, fmt.Errorf("%w: feature has no geometry", ErrInvalidGeometry)
	}
	if !isPolygonal(f.Geometry.Type) {
		return BoundingBox{}, fmt.Errorf("%w: AOI must be a Polygon or MultiPolygon, got %s", ErrInvalidGeometry, f.Geometry.Type)
	}

	var box BoundingBox
	found := false
	walkCoordinates(f.Geometry.Coordinates, func(x, y float64) {
		if !found {
			box = BoundingBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
			found = true
			return
		}
		if x < box.MinX {
			box.MinX = x
		}
		if x > box.MaxX {
			box.MaxX = x
		}
		if y < box.MinY {
			box.MinY = y
		}
		if y > box.MaxY {
			box.MaxY = y
		}
	})

	if !found {
		return BoundingBox{}, fmt.Errorf("%w: AOI contains no coordinates", ErrEmptyGeometry)
	}
	return box, nil
}

// walkCoordinates visits every coordinate pair in a decoded GeoJSON
// coordinate array. A pair is a 2- or 3-element array whose first two
// elements are numbers; the optional third (elevation) is dropped. Anything
// else recurses.
func walkCoordinates(node any, visit func(x, y float64)) {
	arr, ok := node.([]any)
	if !ok {
		return
	}
	if len(arr) == 2 || len(arr) == 3 {
		x, xok := arr[0].(float64)
		y, yok := arr[1].(float64)
		if xok && yok {
			visit(x, y)
			return
		}
	}
	for _, child := range arr {
		walkCoordinates(child, visit)
	}
}
