package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage"
)

// ProjectedPayout is one upcoming payout in a user's dashboard.
type ProjectedPayout struct {
	GroupID       primitive.ObjectID `json:"group_id"`
	GroupTitle    string             `json:"group_title"`
	Amount        float64            `json:"amount"`
	Position      int                `json:"position"`
	EstimatedDate string             `json:"estimated_date"` // YYYY-MM-DD
}

// ContributionSummary aggregates a user's financial standing across all
// their groups.
type ContributionSummary struct {
	Groups               []models.Group    `json:"groups"`
	TotalContributed     float64           `json:"total_contributed"`
	TotalReceived        float64           `json:"total_received"`
	PendingContributions float64           `json:"pending_contributions"`
	NextPayouts          []ProjectedPayout `json:"next_payouts"`
}

// ContributionService projects contribution and payout figures from the
// current cycle state of each group. It is an estimate derived purely from
// cycle arithmetic; it deliberately does not consult the payment ledger,
// which records what members claim to have actually paid.
type ContributionService struct {
	groups storage.GroupStore
	now    func() time.Time
}

func NewContributionService(groups storage.GroupStore) *ContributionService {
	return &ContributionService{groups: groups, now: time.Now}
}

// UserContributions replays every group the user belongs to and sums up what
// they have put in, what they have been paid, and what is coming.
func (s *ContributionService) UserContributions(ctx context.Context, userID primitive.ObjectID) (*ContributionSummary, error) {
	groups, err := s.groups.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}

	summary := &ContributionSummary{
		Groups:      groups,
		NextPayouts: []ProjectedPayout{},
	}
	today := s.now()

	for _, group := range groups {
		member := group.Member(userID)
		if member == nil {
			continue
		}

		// One contribution per completed cycle, whether or not a payment
		// claim was ever filed.
		cyclesCompleted := group.CurrentCycle - 1
		summary.TotalContributed += float64(cyclesCompleted) * group.Amount

		payout, _ := payoutAmount(len(group.Members), group.Amount, group.Plan)

		if member.HasReceived {
			summary.TotalReceived += payout
		}

		// The user's own slot has not come around yet, so their
		// contribution for it is still outstanding.
		if group.CurrentCycle <= member.Position {
			summary.PendingContributions += group.Amount
		}

		if !member.HasReceived {
			periods := member.Position - group.CurrentCycle
			var estimated time.Time
			if group.Plan == models.PlanWeekly {
				estimated = today.AddDate(0, 0, periods*7)
			} else {
				estimated = today.AddDate(0, periods, 0)
			}
			summary.NextPayouts = append(summary.NextPayouts, ProjectedPayout{
				GroupID:       group.ID,
				GroupTitle:    group.Title,
				Amount:        payout,
				Position:      member.Position,
				EstimatedDate: estimated.Format("2006-01-02"),
			})
		}
	}

	sort.Slice(summary.NextPayouts, func(i, j int) bool {
		return summary.NextPayouts[i].EstimatedDate < summary.NextPayouts[j].EstimatedDate
	})
	return summary, nil
}
