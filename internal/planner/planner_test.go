package planner

import (
	"testing"

	"analytics-service/internal/models"
	"analytics-service/internal/registry"

	"github.com/stretchr/testify/assert"
)

var cropAreaColumns = map[string]bool{
	"state_lgd_code": true, "district_lgd_code": true, "season": true,
	"year": true, "crop_name_eng": true, "irrigation_source": true,
	"crop_area_approved": true, "crop_area_closed": true,
	"no_of_farmers": true, "no_of_plots": true,
}

func regionFilterOf(t *testing.T, plan models.QueryPlan) models.Filter {
	t.Helper()
	assert.NotEmpty(t, plan.Filters, "every plan carries at least the region filter")
	return plan.Filters[0]
}

func TestBuild_RegionFilterAlwaysFirst(t *testing.T) {
	p := NewPlanner(registry.Default())

	intents := []models.Intent{
		{IntentType: models.IntentSummary, Indicator: "crop_area"},
		{IntentType: models.IntentComparison, Comparison: "assigned_vs_surveyed"},
		{IntentType: models.IntentComposite, Indicators: []string{"crop_area", "farmers"}},
	}
	for _, intent := range intents {
		plan := p.Build(intent, "27", cropAreaColumns)
		f := regionFilterOf(t, plan)
		assert.Equal(t, registry.ColumnState, f.Column)
		assert.Equal(t, models.FilterEq, f.Op)
		assert.Equal(t, []string{"27"}, f.Values)
	}
}

func TestBuild_SummaryKPI(t *testing.T) {
	p := NewPlanner(registry.Default())

	plan := p.Build(models.Intent{IntentType: models.IntentSummary, Indicator: "farmers"}, "27", cropAreaColumns)
	assert.Equal(t, models.PlanAggregate, plan.Kind)
	assert.Empty(t, plan.GroupColumn)
	assert.Equal(t, models.ChartKPI, plan.ChartType)
	assert.Equal(t, "no_of_farmers", plan.ValueColumn)
}

func TestBuild_UnknownIndicatorFallsBack(t *testing.T) {
	p := NewPlanner(registry.Default())

	plan := p.Build(models.Intent{IntentType: models.IntentSummary, Indicator: "bogus"}, "27", cropAreaColumns)
	assert.Equal(t, "crop_area_approved", plan.ValueColumn)
	assert.Equal(t, registry.TableCropArea, plan.Table)
}

func TestBuild_DistributionGrouping(t *testing.T) {
	p := NewPlanner(registry.Default())

	plan := p.Build(models.Intent{
		IntentType: models.IntentDistribution, Indicator: "crop_area", Dimension: "district", TopN: 5,
	}, "27", cropAreaColumns)

	assert.Equal(t, registry.ColumnDistrict, plan.GroupColumn)
	assert.Equal(t, 5, plan.Limit)
	assert.Equal(t, models.ChartBar, plan.ChartType)
	assert.False(t, plan.Chronological)
}

func TestBuild_OrdinalDimensionIsChronologicalAndUncapped(t *testing.T) {
	p := NewPlanner(registry.Default())

	plan := p.Build(models.Intent{
		IntentType: models.IntentDistribution, Indicator: "crop_area", Dimension: "year", TopN: 5,
	}, "27", cropAreaColumns)

	assert.True(t, plan.Chronological)
	assert.Zero(t, plan.Limit, "time axes are never truncated")
	assert.Equal(t, models.ChartLine, plan.ChartType)
}

func TestBuild_MissingDimensionDegradesWithNote(t *testing.T) {
	p := NewPlanner(registry.Default())

	// The cultivated table has no crop column; the request degrades to a
	// KPI and says so.
	cultivatedColumns := map[string]bool{
		"state_lgd_code": true, "district_lgd_code": true, "year": true,
		"total_surveyed_area": true,
	}
	plan := p.Build(models.Intent{
		IntentType: models.IntentDistribution, Indicator: "surveyed_area", Dimension: "crop",
	}, "27", cultivatedColumns)

	assert.Empty(t, plan.GroupColumn)
	assert.Equal(t, models.ChartKPI, plan.ChartType)
	assert.NotEmpty(t, plan.Note)
}

func TestBuild_FiltersSkipMissingColumns(t *testing.T) {
	p := NewPlanner(registry.Default())

	noSeason := map[string]bool{
		"state_lgd_code": true, "year": true, "crop_area_approved": true,
	}
	plan := p.Build(models.Intent{
		IntentType: models.IntentSummary, Indicator: "crop_area",
		SeasonFilter: "Rabi", CropFilters: []string{"Wheat"}, YearFilter: "2023-2024",
	}, "27", noSeason)

	for _, f := range plan.Filters {
		assert.NotEqual(t, registry.ColumnSeason, f.Column)
		assert.NotEqual(t, registry.ColumnCrop, f.Column)
	}
	// Year survives: the column exists.
	found := false
	for _, f := range plan.Filters {
		if f.Column == registry.ColumnYear {
			found = true
			assert.Equal(t, models.FilterYearEq, f.Op)
			assert.Equal(t, []string{"2023-2024", "2023"}, f.Values)
		}
	}
	assert.True(t, found)
}

func TestBuild_ComparisonPlan(t *testing.T) {
	p := NewPlanner(registry.Default())

	plan := p.Build(models.Intent{
		IntentType: models.IntentComparison, Comparison: "rabi_vs_kharif", YearFilter: "2023-2024",
	}, "27", nil)

	assert.Equal(t, models.PlanComparison, plan.Kind)
	assert.Len(t, plan.Comparison, 2)
	assert.Equal(t, "Rabi", plan.Comparison[0].SeasonEq)
	f := regionFilterOf(t, plan)
	assert.Equal(t, registry.ColumnState, f.Column)
}

func TestBuild_UnknownComparisonDegradesToAggregate(t *testing.T) {
	p := NewPlanner(registry.Default())

	plan := p.Build(models.Intent{
		IntentType: models.IntentComparison, Comparison: "bogus_vs_nothing",
	}, "27", cropAreaColumns)

	assert.Equal(t, models.PlanAggregate, plan.Kind)
}

func TestBuild_CompositePlan(t *testing.T) {
	p := NewPlanner(registry.Default())

	plan := p.Build(models.Intent{
		IntentType: models.IntentComposite, Indicators: []string{"crop_area", "farmers", "bogus"},
	}, "27", cropAreaColumns)

	assert.Equal(t, models.PlanComposite, plan.Kind)
	assert.Len(t, plan.Composite, 2, "unknown composite members are dropped")
	assert.Equal(t, models.ChartKPI, plan.ChartType)
}

func TestBuild_CurrentYearMarkerNeverReachesFilters(t *testing.T) {
	p := NewPlanner(registry.Default())

	// The service resolves YearCurrent before planning; if it ever leaks
	// through, the planner must not emit it as a filter value.
	plan := p.Build(models.Intent{
		IntentType: models.IntentSummary, Indicator: "crop_area", YearFilter: models.YearCurrent,
	}, "27", cropAreaColumns)

	for _, f := range plan.Filters {
		assert.NotEqual(t, registry.ColumnYear, f.Column)
	}
}
