package presenter

import (
	"sync"

	"github.com/sergss/geomark/internal/models"
)

// ViewState is a Presenter that accumulates the rendered state in memory so
// the HTTP layer can serve it as JSON. It is the server-side stand-in for a
// map page: counts, the not-found list, placemarks, and the fitted viewport.
type ViewState struct {
	mu         sync.Mutex
	total      int
	foundCount int
	notFound   []string
	placemarks []models.Placemark
	fitted     *models.Bounds
	mapError   string
}

// Snapshot is a point-in-time copy of the view, safe for serialization.
type Snapshot struct {
	Total      int                `json:"total"`
	FoundCount int                `json:"found_count"`
	NotFound   []string           `json:"not_found"`
	Placemarks []models.Placemark `json:"placemarks"`
	Fitted     *models.Bounds     `json:"fitted,omitempty"`
	MapError   string             `json:"map_error,omitempty"`
}

// NewViewState returns an empty view.
func NewViewState() *ViewState {
	return &ViewState{}
}

// Clear resets the view to its initial empty state.
func (v *ViewState) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.total = 0
	v.foundCount = 0
	v.notFound = nil
	v.placemarks = nil
	v.fitted = nil
	v.mapError = ""
}

// SetTotal publishes the number of jobs in the current run.
func (v *ViewState) SetTotal(total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.total = total
}

// SetFoundCount publishes the running count of resolved addresses.
func (v *ViewState) SetFoundCount(count int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.foundCount = count
}

// SetNotFound publishes the addresses that could not be resolved.
func (v *ViewState) SetNotFound(addresses []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notFound = append([]string(nil), addresses...)
}

// AddPlacemark appends one marker to the view.
func (v *ViewState) AddPlacemark(mark models.Placemark) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.placemarks = append(v.placemarks, mark)
}

// FitToBounds computes the viewport covering every placemark, padded by the
// given margin fraction. A view without placemarks is left unfitted.
func (v *ViewState) FitToBounds(margin float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.placemarks) == 0 {
		return
	}

	bounds := models.NewBounds(v.placemarks[0].Coordinates)
	for _, mark := range v.placemarks[1:] {
		bounds = bounds.Extend(mark.Coordinates)
	}
	bounds = bounds.WithMargin(margin)
	v.fitted = &bounds
}

// ReportMapError records a session-fatal provider error message.
func (v *ViewState) ReportMapError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mapError = message
}

// Snapshot returns a copy of the current view.
func (v *ViewState) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Total:      v.total,
		FoundCount: v.foundCount,
		NotFound:   append([]string(nil), v.notFound...),
		Placemarks: append([]models.Placemark(nil), v.placemarks...),
		MapError:   v.mapError,
	}
	if v.fitted != nil {
		fitted := *v.fitted
		snap.Fitted = &fitted
	}
	return snap
}
