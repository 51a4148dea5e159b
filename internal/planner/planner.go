package planner

import (
	"fmt"
	"strings"

	"analytics-service/internal/models"
	"analytics-service/internal/registry"
)

// Planner turns a validated intent plus the caller's authorized region
// into an execution plan. It is a pure function over the registry: no
// I/O, no clock.
type Planner struct {
	reg *registry.Registry
}

func NewPlanner(reg *registry.Registry) *Planner {
	return &Planner{reg: reg}
}

// DefaultTopN caps grouped results when the query names no explicit limit.
const DefaultTopN = 10

// Build resolves an analytics intent into a QueryPlan. columns lists the
// physical columns available in the indicator's source table; a requested
// grouping column missing from it degrades the plan to a KPI instead of
// failing. The region-equality filter is always present and cannot be
// influenced by the intent.
func (p *Planner) Build(intent models.Intent, regionCode string, columns map[string]bool) models.QueryPlan {
	switch intent.IntentType {
	case models.IntentComparison:
		if plan, ok := p.buildComparison(intent, regionCode); ok {
			return plan
		}
		// Unknown comparison keys degrade to a plain aggregate.
		return p.buildAggregate(intent, regionCode, columns)
	case models.IntentComposite:
		return p.buildComposite(intent, regionCode)
	default:
		return p.buildAggregate(intent, regionCode, columns)
	}
}

func (p *Planner) buildAggregate(intent models.Intent, regionCode string, columns map[string]bool) models.QueryPlan {
	ind, ok := p.reg.Indicator(intent.Indicator)
	if !ok {
		ind = p.reg.DefaultIndicator()
	}

	plan := models.QueryPlan{
		Kind:        models.PlanAggregate,
		Table:       ind.Table,
		ValueColumn: ind.Column,
		Derived:     ind.Derived,
		Title:       ind.Title,
		Unit:        ind.Unit,
		ChartType:   models.ChartKPI,
		Filters:     p.buildFilters(intent, regionCode, columns),
	}

	if intent.Dimension == "" {
		return plan
	}

	dim, ok := p.reg.Dimension(intent.Dimension)
	if !ok {
		return plan
	}
	if !columns[dim.Column] {
		plan.Note = fmt.Sprintf("Dimension '%s' is not available in our %s records.", dim.Title, ind.Table)
		return plan
	}

	plan.GroupColumn = dim.Column
	plan.Title = fmt.Sprintf("%s by %s", ind.Title, dim.Title)
	if dim.Ordinal {
		plan.Chronological = true
		plan.ChartType = models.ChartLine
	} else {
		plan.Limit = intent.TopN
		if plan.Limit <= 0 {
			plan.Limit = DefaultTopN
		}
		plan.ChartType = models.ChartBar
		if dim.Key == "season" || dim.Key == "irrigation" {
			plan.ChartType = models.ChartPie
		}
	}
	return plan
}

func (p *Planner) buildComparison(intent models.Intent, regionCode string) (models.QueryPlan, bool) {
	cmp, ok := p.reg.Comparison(intent.Comparison)
	if !ok {
		return models.QueryPlan{}, false
	}

	legs := make([]models.ComparisonLeg, 0, 2)
	for _, leg := range cmp.Legs {
		legs = append(legs, models.ComparisonLeg{
			Label:    leg.Label,
			Table:    leg.Table,
			Column:   leg.Column,
			SeasonEq: leg.SeasonEq,
		})
	}

	filters := []models.Filter{regionFilter(regionCode)}
	if intent.MentionedDistrictCode != "" {
		filters = append(filters, models.Filter{
			Column: registry.ColumnDistrict, Op: models.FilterEq, Values: []string{intent.MentionedDistrictCode},
		})
	}
	if intent.YearFilter != "" && intent.YearFilter != models.YearCurrent {
		filters = append(filters, yearFilter(intent.YearFilter))
	}

	return models.QueryPlan{
		Kind:       models.PlanComparison,
		Comparison: legs,
		Filters:    filters,
		Title:      cmp.Title,
		Unit:       cmp.Unit,
		ChartType:  models.ChartBar,
	}, true
}

func (p *Planner) buildComposite(intent models.Intent, regionCode string) models.QueryPlan {
	items := make([]models.CompositeItem, 0, len(intent.Indicators))
	titles := make([]string, 0, len(intent.Indicators))
	for _, key := range intent.Indicators {
		ind, ok := p.reg.Indicator(key)
		if !ok {
			continue
		}
		items = append(items, models.CompositeItem{
			Indicator: ind.Key,
			Table:     ind.Table,
			Column:    ind.Column,
			Derived:   ind.Derived,
			Title:     ind.Title,
			Unit:      ind.Unit,
		})
		titles = append(titles, ind.Title)
	}

	filters := []models.Filter{regionFilter(regionCode)}
	if intent.MentionedDistrictCode != "" {
		filters = append(filters, models.Filter{
			Column: registry.ColumnDistrict, Op: models.FilterEq, Values: []string{intent.MentionedDistrictCode},
		})
	}
	if intent.YearFilter != "" && intent.YearFilter != models.YearCurrent {
		filters = append(filters, yearFilter(intent.YearFilter))
	}

	return models.QueryPlan{
		Kind:      models.PlanComposite,
		Composite: items,
		Filters:   filters,
		Title:     strings.Join(titles, " & "),
		ChartType: models.ChartKPI,
	}
}

func (p *Planner) buildFilters(intent models.Intent, regionCode string, columns map[string]bool) []models.Filter {
	filters := []models.Filter{regionFilter(regionCode)}

	if intent.MentionedDistrictCode != "" && columns[registry.ColumnDistrict] {
		filters = append(filters, models.Filter{
			Column: registry.ColumnDistrict, Op: models.FilterEq, Values: []string{intent.MentionedDistrictCode},
		})
	}
	if len(intent.CropFilters) > 0 && columns[registry.ColumnCrop] {
		filters = append(filters, models.Filter{
			Column: registry.ColumnCrop, Op: models.FilterIContainsAny, Values: intent.CropFilters,
		})
	}
	if intent.SeasonFilter != "" && columns[registry.ColumnSeason] {
		filters = append(filters, models.Filter{
			Column: registry.ColumnSeason, Op: models.FilterIEq, Values: []string{intent.SeasonFilter},
		})
	}
	if intent.YearFilter != "" && intent.YearFilter != models.YearCurrent && columns[registry.ColumnYear] {
		filters = append(filters, yearFilter(intent.YearFilter))
	}
	return filters
}

func regionFilter(regionCode string) models.Filter {
	return models.Filter{
		Column: registry.ColumnState, Op: models.FilterEq, Values: []string{regionCode},
	}
}

func yearFilter(year string) models.Filter {
	values := []string{year}
	// "2024-2025" also matches rows that store only the first year.
	if idx := strings.Index(year, "-"); idx > 0 {
		values = append(values, year[:idx])
	}
	return models.Filter{Column: registry.ColumnYear, Op: models.FilterYearEq, Values: values}
}
