package batch

import (
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// Objective scores a scenario's metrics. Lower scores rank first.
type Objective interface {
	Name() string
	Evaluate(m *models.CampaignMetrics) float64
}

// ObjectiveType names a built-in objective
type ObjectiveType string

const (
	ObjectiveCostPerVaccinated ObjectiveType = "cost_per_vaccinated"
	ObjectiveTotalCost         ObjectiveType = "total_cost"
	ObjectiveMeanWait          ObjectiveType = "mean_wait"
	ObjectiveAbandonment       ObjectiveType = "abandonment"
	ObjectiveDaysToTarget      ObjectiveType = "days_to_target"
	ObjectiveCoverage          ObjectiveType = "coverage"
)

// penalty is the score of a scenario that produced no usable value
const penalty = 1e18

// UnknownObjectiveError indicates an unknown objective type
type UnknownObjectiveError struct {
	ObjectiveType string
}

func (e *UnknownObjectiveError) Error() string {
	return "unknown objective type: " + e.ObjectiveType
}

type objectiveFunc struct {
	name string
	eval func(m *models.CampaignMetrics) float64
}

func (o objectiveFunc) Name() string { return o.name }

func (o objectiveFunc) Evaluate(m *models.CampaignMetrics) float64 {
	if m == nil {
		return penalty
	}
	return o.eval(m)
}

// NewObjective creates an objective from its type string
func NewObjective(objType string) (Objective, error) {
	t := ObjectiveType(objType)
	switch t {
	case ObjectiveCostPerVaccinated:
		return objectiveFunc{objType, func(m *models.CampaignMetrics) float64 {
			if m.General.Vaccinated == 0 {
				return penalty
			}
			return m.Costs.PerVaccinated
		}}, nil
	case ObjectiveTotalCost:
		return objectiveFunc{objType, func(m *models.CampaignMetrics) float64 {
			return m.Costs.Total
		}}, nil
	case ObjectiveMeanWait:
		return objectiveFunc{objType, func(m *models.CampaignMetrics) float64 {
			if m.General.Vaccinated == 0 {
				return penalty
			}
			return m.Waits.Mean
		}}, nil
	case ObjectiveAbandonment:
		return objectiveFunc{objType, func(m *models.CampaignMetrics) float64 {
			return m.General.AbandonmentPct
		}}, nil
	case ObjectiveDaysToTarget:
		return objectiveFunc{objType, func(m *models.CampaignMetrics) float64 {
			ms, ok := m.Milestone(100)
			if !ok || !ms.Reached {
				return penalty
			}
			return ms.Days
		}}, nil
	case ObjectiveCoverage:
		// maximized, so negated
		return objectiveFunc{objType, func(m *models.CampaignMetrics) float64 {
			return -m.General.CoveragePct
		}}, nil
	default:
		return nil, &UnknownObjectiveError{ObjectiveType: objType}
	}
}

// Ranked is one scenario placed by an objective
type Ranked struct {
	Rank    int
	Name    string
	Score   float64
	Metrics *models.CampaignMetrics
}

// Rank orders the successful outcomes by objective score, best first.
// Ties keep input order.
func Rank(outcomes []Outcome, obj Objective) []Ranked {
	var ranked []Ranked
	for _, o := range outcomes {
		if o.Err != nil || o.Metrics == nil {
			continue
		}
		score := obj.Evaluate(o.Metrics)
		if math.IsNaN(score) {
			score = penalty
		}
		ranked = append(ranked, Ranked{Name: o.Name, Score: score, Metrics: o.Metrics})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score < ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
