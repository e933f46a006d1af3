package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

func metricsWith(name string, perVaccinated, wait float64, fullDays float64) *models.CampaignMetrics {
	m := &models.CampaignMetrics{Scenario: name}
	m.General.Vaccinated = 10
	m.Costs.PerVaccinated = perVaccinated
	m.Waits.Mean = wait
	ms := models.Milestone{Percent: 100}
	if fullDays > 0 {
		ms.Reached = true
		ms.Days = fullDays
	}
	m.Milestones = []models.Milestone{ms}
	return m
}

func TestNewObjective(t *testing.T) {
	for _, name := range []ObjectiveType{
		ObjectiveCostPerVaccinated, ObjectiveTotalCost, ObjectiveMeanWait,
		ObjectiveAbandonment, ObjectiveDaysToTarget, ObjectiveCoverage,
	} {
		obj, err := NewObjective(string(name))
		require.NoError(t, err, name)
		assert.Equal(t, string(name), obj.Name())
	}

	_, err := NewObjective("fastest")
	var unknown *UnknownObjectiveError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "fastest", unknown.ObjectiveType)
}

func TestObjectivePenalties(t *testing.T) {
	days, _ := NewObjective(string(ObjectiveDaysToTarget))
	assert.Equal(t, 42.0, days.Evaluate(metricsWith("a", 1, 1, 42)))
	assert.Equal(t, penalty, days.Evaluate(metricsWith("b", 1, 1, 0)))
	assert.Equal(t, penalty, days.Evaluate(nil))

	wait, _ := NewObjective(string(ObjectiveMeanWait))
	none := &models.CampaignMetrics{}
	assert.Equal(t, penalty, wait.Evaluate(none))

	coverage, _ := NewObjective(string(ObjectiveCoverage))
	m := &models.CampaignMetrics{}
	m.General.CoveragePct = 80
	assert.Equal(t, -80.0, coverage.Evaluate(m))
}

func TestRank(t *testing.T) {
	outcomes := []Outcome{
		{Name: "expensive", Metrics: metricsWith("expensive", 300, 1, 10)},
		{Name: "broken", Err: errors.New("failed")},
		{Name: "cheap", Metrics: metricsWith("cheap", 100, 9, 30)},
		{Name: "empty"},
		{Name: "middle", Metrics: metricsWith("middle", 200, 5, 20)},
	}

	obj, err := NewObjective(string(ObjectiveCostPerVaccinated))
	require.NoError(t, err)
	ranked := Rank(outcomes, obj)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"cheap", "middle", "expensive"},
		[]string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 3, ranked[2].Rank)

	obj, _ = NewObjective(string(ObjectiveMeanWait))
	ranked = Rank(outcomes, obj)
	assert.Equal(t, "expensive", ranked[0].Name)
}
