package models

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}

// Bounds represents a rectangular geographical region. It is used both as a
// lookup bias (the current map viewport) and as the fitted extent of plotted
// placemarks.
type Bounds struct {
	SouthWest Coordinates `json:"south_west"` // SouthWest is the lower-left corner of the region.
	NorthEast Coordinates `json:"north_east"` // NorthEast is the upper-right corner of the region.
}

// NewBounds returns a degenerate region containing only the given point.
func NewBounds(point Coordinates) Bounds {
	return Bounds{SouthWest: point, NorthEast: point}
}

// Extend returns the smallest region containing both the receiver and the given point.
func (b Bounds) Extend(point Coordinates) Bounds {
	if point.Latitude < b.SouthWest.Latitude {
		b.SouthWest.Latitude = point.Latitude
	}
	if point.Latitude > b.NorthEast.Latitude {
		b.NorthEast.Latitude = point.Latitude
	}
	if point.Longitude < b.SouthWest.Longitude {
		b.SouthWest.Longitude = point.Longitude
	}
	if point.Longitude > b.NorthEast.Longitude {
		b.NorthEast.Longitude = point.Longitude
	}
	return b
}

// WithMargin returns the region padded on every side by the given fraction of
// its span. A degenerate region is padded by a small fixed amount so the
// fitted viewport never collapses to zero area.
func (b Bounds) WithMargin(fraction float64) Bounds {
	const minPad = 0.01 // degrees

	latPad := (b.NorthEast.Latitude - b.SouthWest.Latitude) * fraction
	lonPad := (b.NorthEast.Longitude - b.SouthWest.Longitude) * fraction
	if latPad < minPad {
		latPad = minPad
	}
	if lonPad < minPad {
		lonPad = minPad
	}

	b.SouthWest.Latitude -= latPad
	b.SouthWest.Longitude -= lonPad
	b.NorthEast.Latitude += latPad
	b.NorthEast.Longitude += lonPad
	return b
}
