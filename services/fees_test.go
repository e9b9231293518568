package services

import (
	"testing"

	"github.com/kamau/chamacircle-go/models"
)

func TestFeeFor(t *testing.T) {
	if got := FeeFor(models.PlanWeekly); got != 0.01 {
		t.Errorf("weekly fee = %v, want 0.01", got)
	}
	if got := FeeFor(models.PlanMonthly); got != 0.03 {
		t.Errorf("monthly fee = %v, want 0.03", got)
	}
}
