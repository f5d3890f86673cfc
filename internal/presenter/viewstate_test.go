package presenter_test

import (
	"testing"

	"github.com/sergss/geomark/internal/models"
	"github.com/sergss/geomark/internal/presenter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewState(t *testing.T) {
	t.Run("accumulates placemarks and counters", func(t *testing.T) {
		view := presenter.NewViewState()

		view.SetTotal(3)
		view.AddPlacemark(models.Placemark{
			Coordinates: models.Coordinates{Latitude: 50.45, Longitude: 30.52},
			Index:       1,
			Original:    "Kyiv",
			Found:       "Ukraine, Kyiv",
		})
		view.SetFoundCount(1)
		view.SetNotFound([]string{"Atlantis"})

		snap := view.Snapshot()
		assert.Equal(t, 3, snap.Total)
		assert.Equal(t, 1, snap.FoundCount)
		assert.Equal(t, []string{"Atlantis"}, snap.NotFound)
		require.Len(t, snap.Placemarks, 1)
		assert.Equal(t, "Kyiv", snap.Placemarks[0].Original)
		assert.Nil(t, snap.Fitted)
	})

	t.Run("fit covers every placemark with a margin", func(t *testing.T) {
		view := presenter.NewViewState()
		view.AddPlacemark(models.Placemark{
			Coordinates: models.Coordinates{Latitude: 50.0, Longitude: 30.0},
		})
		view.AddPlacemark(models.Placemark{
			Coordinates: models.Coordinates{Latitude: 51.0, Longitude: 32.0},
		})

		view.FitToBounds(0.1)

		snap := view.Snapshot()
		require.NotNil(t, snap.Fitted)
		assert.InDelta(t, 49.9, snap.Fitted.SouthWest.Latitude, 1e-9)
		assert.InDelta(t, 29.8, snap.Fitted.SouthWest.Longitude, 1e-9)
		assert.InDelta(t, 51.1, snap.Fitted.NorthEast.Latitude, 1e-9)
		assert.InDelta(t, 32.2, snap.Fitted.NorthEast.Longitude, 1e-9)
	})

	t.Run("fit without placemarks is a no-op", func(t *testing.T) {
		view := presenter.NewViewState()
		view.FitToBounds(0.1)
		assert.Nil(t, view.Snapshot().Fitted)
	})

	t.Run("clear resets everything", func(t *testing.T) {
		view := presenter.NewViewState()
		view.SetTotal(2)
		view.AddPlacemark(models.Placemark{Index: 1})
		view.SetFoundCount(1)
		view.SetNotFound([]string{"nowhere"})
		view.FitToBounds(0.1)
		view.ReportMapError("provider rejected the API key")

		view.Clear()

		snap := view.Snapshot()
		assert.Zero(t, snap.Total)
		assert.Zero(t, snap.FoundCount)
		assert.Empty(t, snap.NotFound)
		assert.Empty(t, snap.Placemarks)
		assert.Nil(t, snap.Fitted)
		assert.Empty(t, snap.MapError)
	})

	t.Run("snapshot is detached from later mutations", func(t *testing.T) {
		view := presenter.NewViewState()
		view.AddPlacemark(models.Placemark{Index: 1})

		snap := view.Snapshot()
		view.AddPlacemark(models.Placemark{Index: 2})

		assert.Len(t, snap.Placemarks, 1)
		assert.Len(t, view.Snapshot().Placemarks, 2)
	})
}
