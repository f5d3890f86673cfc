package models_test

import (
	"testing"

	"github.com/sergss/geomark/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBounds_Extend(t *testing.T) {
	t.Parallel()

	bounds := models.NewBounds(models.Coordinates{Latitude: 50.45, Longitude: 30.52})
	bounds = bounds.Extend(models.Coordinates{Latitude: 49.84, Longitude: 24.03})
	bounds = bounds.Extend(models.Coordinates{Latitude: 46.48, Longitude: 30.72})

	assert.InEpsilon(t, 46.48, bounds.SouthWest.Latitude, 0.0001)
	assert.InEpsilon(t, 24.03, bounds.SouthWest.Longitude, 0.0001)
	assert.InEpsilon(t, 50.45, bounds.NorthEast.Latitude, 0.0001)
	assert.InEpsilon(t, 30.72, bounds.NorthEast.Longitude, 0.0001)
}

func TestBounds_WithMargin(t *testing.T) {
	t.Parallel()

	t.Run("pads by a fraction of the span", func(t *testing.T) {
		t.Parallel()
		bounds := models.Bounds{
			SouthWest: models.Coordinates{Latitude: 40, Longitude: 20},
			NorthEast: models.Coordinates{Latitude: 50, Longitude: 30},
		}

		padded := bounds.WithMargin(0.1)

		assert.InEpsilon(t, 39, padded.SouthWest.Latitude, 0.0001)
		assert.InEpsilon(t, 19, padded.SouthWest.Longitude, 0.0001)
		assert.InEpsilon(t, 51, padded.NorthEast.Latitude, 0.0001)
		assert.InEpsilon(t, 31, padded.NorthEast.Longitude, 0.0001)
	})

	t.Run("single point never collapses to zero area", func(t *testing.T) {
		t.Parallel()
		point := models.Coordinates{Latitude: 50.45, Longitude: 30.52}

		padded := models.NewBounds(point).WithMargin(0.1)

		assert.Less(t, padded.SouthWest.Latitude, point.Latitude)
		assert.Less(t, padded.SouthWest.Longitude, point.Longitude)
		assert.Greater(t, padded.NorthEast.Latitude, point.Latitude)
		assert.Greater(t, padded.NorthEast.Longitude, point.Longitude)
	})
}
