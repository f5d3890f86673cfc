package presenter

import "github.com/sergss/geomark/internal/models"

// Presenter receives incremental updates from the batch runner. It is the
// boundary to whatever renders the results; the runner never depends on how
// counts and placemarks are displayed, only on this surface.
type Presenter interface {
	// Clear removes all previously rendered results before a new run.
	Clear()
	// SetTotal publishes the number of jobs in the current run.
	SetTotal(total int)
	// SetFoundCount publishes the running count of resolved addresses.
	SetFoundCount(count int)
	// SetNotFound publishes the addresses that could not be resolved, in input order.
	SetNotFound(addresses []string)
	// AddPlacemark renders one marker for a resolved address.
	AddPlacemark(mark models.Placemark)
	// FitToBounds asks the view to cover all placemarks with the given margin.
	FitToBounds(margin float64)
	// ReportMapError surfaces a session-fatal provider error, distinct from
	// "address not found".
	ReportMapError(message string)
}
