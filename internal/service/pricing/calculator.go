package pricing

import "math"

// Config holds pricing configuration
type Config struct {
	BaseFare    float64
	PerMileRate float64
}

// Calculator produces the up-front price estimate shown to the customer
// when the ride is requested. The estimate is locked into the ride record;
// there is no re-pricing after the trip.
type Calculator struct {
	config Config
}

// Estimate is the price quote for a prospective ride
type Estimate struct {
	DistanceMiles float64 `json:"distance_miles"`
	BaseFare      float64 `json:"base_fare"`
	DistanceFare  float64 `json:"distance_fare"`
	Total         float64 `json:"total"`
}

// NewCalculator creates a pricing calculator
func NewCalculator(config Config) *Calculator {
	return &Calculator{config: config}
}

// EstimatePrice computes the quote for a straight-line distance in miles.
// The total never drops below the base fare and is rounded to cents.
func (c *Calculator) EstimatePrice(distanceMiles float64) Estimate {
	if distanceMiles < 0 {
		distanceMiles = 0
	}

	distanceFare := distanceMiles * c.config.PerMileRate
	total := c.config.BaseFare + distanceFare
	if total < c.config.BaseFare {
		total = c.config.BaseFare
	}

	return Estimate{
		DistanceMiles: roundCents(distanceMiles),
		BaseFare:      c.config.BaseFare,
		DistanceFare:  roundCents(distanceFare),
		Total:         roundCents(total),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
