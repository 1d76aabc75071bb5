package services

import "github.com/diewo77/tutoring-app/internal/models"

// ResolvePrice maps a billing cadence to the matching course price point.
// Pure function; the caller is responsible for resolving the course itself.
func ResolvePrice(course *models.Course, cadence models.Cadence) (float64, error) {
	if course == nil {
		return 0, ErrCourseNotFound
	}
	switch cadence {
	case models.CadenceMonthly:
		return course.PriceMonthly, nil
	case models.CadenceQuarterly:
		return course.PriceQuarterly, nil
	case models.CadenceSemiAnnual:
		return course.PriceSemiAnnual, nil
	default:
		return 0, ErrInvalidCadence
	}
}
