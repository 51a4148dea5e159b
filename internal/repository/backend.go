package repository

import (
	"context"

	"analytics-service/internal/models"
)

// Backend executes query plans against one tabular source. The relational
// store and the in-memory snapshot store are interchangeable: the same
// plan against equivalent data must produce numerically identical
// aggregates.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
	// Columns reports the physical columns of a source table; the planner
	// uses it to degrade unavailable dimensions.
	Columns(ctx context.Context, table string) (map[string]bool, error)
	// LatestYear resolves the newest year present in the region's own
	// data, so "current year" reflects the latest available period.
	LatestYear(ctx context.Context, regionCode string) (string, error)
	Execute(ctx context.Context, plan models.QueryPlan) (*models.AnalyticsResult, error)
}

// finalizeResult applies the invariants every backend shares: parallel
// labels/values, total as the value sum, per-label percentages for
// distributions, and the explicit no-data shape for empty or all-zero
// aggregates.
func finalizeResult(plan models.QueryPlan, labels []string, values []float64) *models.AnalyticsResult {
	result := &models.AnalyticsResult{
		Kind:      plan.Kind,
		Title:     plan.Title,
		Unit:      plan.Unit,
		Labels:    labels,
		Values:    values,
		ChartType: plan.ChartType,
		Note:      plan.Note,
	}

	total := 0.0
	allZero := true
	for _, v := range values {
		total += v
		if v != 0 {
			allZero = false
		}
	}
	result.Total = total

	if len(values) == 0 || allZero {
		result.NoData = true
		result.Labels = []string{}
		result.Values = []float64{}
		result.Total = 0
		result.ChartType = models.ChartMessage
		return result
	}

	if plan.Kind == models.PlanAggregate && plan.GroupColumn != "" {
		percentages := make([]float64, len(values))
		for i, v := range values {
			if total > 0 {
				percentages[i] = v / total * 100
			}
		}
		result.Percentages = percentages
	}
	return result
}

func finalizeComposite(plan models.QueryPlan, items []models.KPIValue) *models.AnalyticsResult {
	labels := make([]string, len(items))
	values := make([]float64, len(items))
	allZero := true
	for i, item := range items {
		labels[i] = item.Title
		values[i] = item.Value
		if item.Value != 0 {
			allZero = false
		}
	}

	result := &models.AnalyticsResult{
		Kind:      models.PlanComposite,
		Title:     plan.Title,
		Labels:    labels,
		Values:    values,
		Items:     items,
		ChartType: models.ChartKPI,
		Note:      plan.Note,
	}
	for _, v := range values {
		result.Total += v
	}
	if len(items) == 0 || allZero {
		result.NoData = true
		result.Labels = []string{}
		result.Values = []float64{}
		result.Total = 0
		result.ChartType = models.ChartMessage
	}
	return result
}
