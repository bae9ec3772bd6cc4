package report

import (
	"math"
	"sort"
)

const (
	// Coarse bounding box in degrees, not a geodesic distance.
	CoordinateTolerance = 5.0
	YearTolerance       = 3
	MaxComparables      = 3
)

type EstimateParams struct {
	Make       string
	Model      string
	Year       int
	Kilometers float64
	Longitude  float64
	Latitude   float64
}

// Comparable reports whether r may contribute to an estimate for p.
func (p EstimateParams) Comparable(r Report) bool {
	if !r.Approved || r.Make != p.Make || r.Model != p.Model {
		return false
	}

	if math.Abs(r.Longitude-p.Longitude) > CoordinateTolerance || math.Abs(r.Latitude-p.Latitude) > CoordinateTolerance {
		return false
	}

	return absInt(r.Year-p.Year) <= YearTolerance
}

// Estimate averages the price of at most MaxComparables matching reports,
// ranked by mileage distance descending. It returns nil when nothing matches.
func Estimate(reports []Report, p EstimateParams) *float64 {
	matches := make([]Report, 0, len(reports))

	for _, r := range reports {
		if p.Comparable(r) {
			matches = append(matches, r)
		}
	}

	if len(matches) == 0 {
		return nil
	}

	// Farthest mileage first, same as the SQL stores' ORDER BY ... DESC.
	sort.SliceStable(matches, func(i, j int) bool {
		return math.Abs(matches[i].Kilometers-p.Kilometers) > math.Abs(matches[j].Kilometers-p.Kilometers)
	})

	if len(matches) > MaxComparables {
		matches = matches[:MaxComparables]
	}

	var sum float64
	for _, r := range matches {
		sum += r.Price
	}

	mean := sum / float64(len(matches))

	return &mean
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
