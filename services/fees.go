package services

import "github.com/kamau/chamacircle-go/models"

// FeeFor returns the service fee rate deducted from a payout pool.
// Weekly groups pay 1%, monthly groups 3%.
func FeeFor(plan models.Plan) float64 {
	if plan == models.PlanWeekly {
		return 0.01
	}
	return 0.03
}
