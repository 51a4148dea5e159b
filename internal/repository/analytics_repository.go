package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"analytics-service/internal/models"
	"analytics-service/internal/registry"

	"github.com/jmoiron/sqlx"
)

var errDatabaseUnavailable = errors.New("database connection is not established")

// AnalyticsRepository is the relational executor. Identifiers (tables,
// columns) come exclusively from the registry; every filter value is
// passed as a bind parameter. The connection may arrive late: when the
// startup connect fails, the repository answers with an explicit error
// until SetDB hands it a live handle from the reconnect loop.
type AnalyticsRepository struct {
	mu sync.RWMutex
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// SetDB installs a (re)established connection.
func (r *AnalyticsRepository) SetDB(db *sqlx.DB) {
	r.mu.Lock()
	r.db = db
	r.mu.Unlock()
}

func (r *AnalyticsRepository) conn() (*sqlx.DB, error) {
	r.mu.RLock()
	db := r.db
	r.mu.RUnlock()
	if db == nil {
		return nil, errDatabaseUnavailable
	}
	return db, nil
}

func (r *AnalyticsRepository) Name() string { return "database" }

func (r *AnalyticsRepository) Ping(ctx context.Context) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *AnalyticsRepository) Columns(ctx context.Context, table string) (map[string]bool, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	query := `SELECT column_name FROM information_schema.columns WHERE table_name = $1`

	var names []string
	if err := db.SelectContext(ctx, &names, query, table); err != nil {
		slog.Error("failed to introspect table columns", "table", table, "error", err)
		return nil, fmt.Errorf("introspect columns of %s: %w", table, err)
	}
	columns := make(map[string]bool, len(names))
	for _, name := range names {
		columns[name] = true
	}
	return columns, nil
}

func (r *AnalyticsRepository) LatestYear(ctx context.Context, regionCode string) (string, error) {
	db, err := r.conn()
	if err != nil {
		return "", err
	}
	query := `
		SELECT COALESCE(MAX(y), '') FROM (
			SELECT MAX(year) AS y FROM crop_area_data WHERE state_lgd_code = $1
			UNION ALL
			SELECT MAX(year) AS y FROM aggregate_summary_data WHERE state_lgd_code = $1
			UNION ALL
			SELECT MAX(year) AS y FROM cultivated_summary_data WHERE state_lgd_code = $1
		) AS years
	`

	var year string
	if err := db.GetContext(ctx, &year, query, regionCode); err != nil {
		slog.Error("failed to resolve latest year", "lgd_code", regionCode, "error", err)
		return "", fmt.Errorf("resolve latest year: %w", err)
	}
	return year, nil
}

func (r *AnalyticsRepository) Execute(ctx context.Context, plan models.QueryPlan) (*models.AnalyticsResult, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	switch plan.Kind {
	case models.PlanComparison:
		return r.executeComparison(ctx, db, plan)
	case models.PlanComposite:
		return r.executeComposite(ctx, db, plan)
	default:
		return r.executeAggregate(ctx, db, plan)
	}
}

type labeledRow struct {
	Label sql.NullString  `db:"label"`
	Value sql.NullFloat64 `db:"value"`
}

func (r *AnalyticsRepository) executeAggregate(ctx context.Context, db *sqlx.DB, plan models.QueryPlan) (*models.AnalyticsResult, error) {
	where, args := buildWhere(plan.Filters)
	valueExpr := valueExpression(plan.ValueColumn, plan.Derived)

	if plan.GroupColumn == "" {
		query := fmt.Sprintf(`SELECT COALESCE(SUM(%s), 0) FROM %s %s`, valueExpr, plan.Table, where)
		var total float64
		if err := db.GetContext(ctx, &total, query, args...); err != nil {
			slog.Error("aggregate query failed", "table", plan.Table, "error", err)
			return nil, fmt.Errorf("execute aggregate on %s: %w", plan.Table, err)
		}
		result := finalizeResult(plan, []string{"Total"}, []float64{total})
		r.attachKPIExtras(ctx, db, plan, where, args, result)
		return result, nil
	}

	order := "ORDER BY value DESC"
	limit := ""
	if plan.Chronological {
		order = "ORDER BY label ASC"
	} else if plan.Limit > 0 {
		limit = fmt.Sprintf("LIMIT %d", plan.Limit)
	}
	query := fmt.Sprintf(
		`SELECT %s AS label, SUM(%s) AS value FROM %s %s GROUP BY %s %s %s`,
		plan.GroupColumn, valueExpr, plan.Table, where, plan.GroupColumn, order, limit,
	)

	var rows []labeledRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		slog.Error("grouped aggregate query failed", "table", plan.Table, "group", plan.GroupColumn, "error", err)
		return nil, fmt.Errorf("execute grouped aggregate on %s: %w", plan.Table, err)
	}

	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		label := "Unknown"
		if row.Label.Valid && row.Label.String != "" {
			label = row.Label.String
		}
		labels = append(labels, label)
		values = append(values, row.Value.Float64)
	}
	return finalizeResult(plan, labels, values), nil
}

// attachKPIExtras adds farmer and plot counts to crop-area KPIs when the
// source table carries those columns.
func (r *AnalyticsRepository) attachKPIExtras(ctx context.Context, db *sqlx.DB, plan models.QueryPlan, where string, args []any, result *models.AnalyticsResult) {
	if plan.Table != registry.TableCropArea {
		return
	}
	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(no_of_farmers), 0) AS farmers, COALESCE(SUM(no_of_plots), 0) AS plots FROM %s %s`,
		plan.Table, where,
	)
	var extras struct {
		Farmers int64 `db:"farmers"`
		Plots   int64 `db:"plots"`
	}
	if err := db.GetContext(ctx, &extras, query, args...); err != nil {
		slog.Warn("failed to attach KPI extras", "table", plan.Table, "error", err)
		return
	}
	result.FarmersCount = extras.Farmers
	result.PlotsCount = extras.Plots
}

func (r *AnalyticsRepository) executeComparison(ctx context.Context, db *sqlx.DB, plan models.QueryPlan) (*models.AnalyticsResult, error) {
	labels := make([]string, 0, len(plan.Comparison))
	values := make([]float64, 0, len(plan.Comparison))

	for _, leg := range plan.Comparison {
		filters := plan.Filters
		if leg.SeasonEq != "" {
			filters = append(append([]models.Filter{}, filters...), models.Filter{
				Column: registry.ColumnSeason, Op: models.FilterIEq, Values: []string{leg.SeasonEq},
			})
		}
		where, args := buildWhere(filters)
		query := fmt.Sprintf(`SELECT COALESCE(SUM(%s), 0) FROM %s %s`, leg.Column, leg.Table, where)

		var value float64
		if err := db.GetContext(ctx, &value, query, args...); err != nil {
			slog.Error("comparison leg query failed", "table", leg.Table, "column", leg.Column, "error", err)
			return nil, fmt.Errorf("execute comparison leg %s: %w", leg.Label, err)
		}
		labels = append(labels, leg.Label)
		values = append(values, value)
	}
	return finalizeResult(plan, labels, values), nil
}

func (r *AnalyticsRepository) executeComposite(ctx context.Context, db *sqlx.DB, plan models.QueryPlan) (*models.AnalyticsResult, error) {
	where, args := buildWhere(plan.Filters)

	items := make([]models.KPIValue, 0, len(plan.Composite))
	for _, item := range plan.Composite {
		valueExpr := valueExpression(item.Column, item.Derived)
		query := fmt.Sprintf(`SELECT COALESCE(SUM(%s), 0) FROM %s %s`, valueExpr, item.Table, where)

		var value float64
		if err := db.GetContext(ctx, &value, query, args...); err != nil {
			slog.Error("composite KPI query failed", "table", item.Table, "indicator", item.Indicator, "error", err)
			return nil, fmt.Errorf("execute composite KPI %s: %w", item.Indicator, err)
		}
		items = append(items, models.KPIValue{Title: item.Title, Value: value, Unit: item.Unit})
	}
	return finalizeComposite(plan, items), nil
}

func valueExpression(column string, derived bool) string {
	if derived {
		return "(" + registry.PendingExpr + ")"
	}
	return column
}

// buildWhere renders the filter list as a parameterized WHERE clause.
// Column names come from the registry, never from user input.
func buildWhere(filters []models.Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}

	var clauses []string
	var args []any
	n := 1

	for _, f := range filters {
		switch f.Op {
		case models.FilterEq:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", f.Column, n))
			args = append(args, f.Values[0])
			n++
		case models.FilterIEq:
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) = LOWER($%d)", f.Column, n))
			args = append(args, f.Values[0])
			n++
		case models.FilterIContainsAny:
			var sub []string
			for _, v := range f.Values {
				sub = append(sub, fmt.Sprintf("LOWER(%s) LIKE $%d", f.Column, n))
				args = append(args, "%"+strings.ToLower(v)+"%")
				n++
			}
			clauses = append(clauses, "("+strings.Join(sub, " OR ")+")")
		case models.FilterYearEq:
			var sub []string
			for _, v := range f.Values {
				sub = append(sub, fmt.Sprintf("%s = $%d", f.Column, n))
				args = append(args, v)
				n++
			}
			clauses = append(clauses, "("+strings.Join(sub, " OR ")+")")
		}
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
