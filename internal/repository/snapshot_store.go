package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"analytics-service/internal/models"
	"analytics-service/internal/registry"
)

// Table is one cached tabular snapshot.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

func NewTable(name string, columns []string, rows [][]string) *Table {
	t := &Table{Name: name, Columns: columns, Rows: rows}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		t.index[strings.ToLower(strings.TrimSpace(col))] = i
	}
}

func (t *Table) col(name string) (int, bool) {
	idx, ok := t.index[name]
	return idx, ok
}

// joinKeyColumns is the full common key set shared by the three source
// tables. Cross-source joins must use every key present in both sides so
// rows never collapse into each other.
var joinKeyColumns = []string{
	registry.ColumnState,
	registry.ColumnDistrict,
	"sub_district_lgd_code",
	"village_lgd_code",
	registry.ColumnSeason,
	registry.ColumnYear,
}

// SnapshotStore is the in-memory tabular backend. Source files are loaded
// once on first use and reused across requests; requests filter into
// fresh slices and never mutate the cached rows. Reload drops every
// cached table and the single cached join.
type SnapshotStore struct {
	mu     sync.RWMutex
	paths  map[string]string
	tables map[string]*Table

	joinCacheKey string
	joinCache    *Table
}

func NewSnapshotStore(paths map[string]string) *SnapshotStore {
	return &SnapshotStore{
		paths:  paths,
		tables: make(map[string]*Table),
	}
}

func (s *SnapshotStore) Name() string { return "csv" }

func (s *SnapshotStore) Ping(ctx context.Context) error {
	for _, name := range s.tableNames() {
		if _, err := s.ensure(name); err != nil {
			return err
		}
	}
	return nil
}

// Seed installs a table directly, bypassing file loading. Used by tests
// and by callers that assemble snapshots from other sources.
func (s *SnapshotStore) Seed(t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Name] = t
	s.joinCache = nil
	s.joinCacheKey = ""
}

// Reload invalidates every cached table and the join cache; the next
// request loads fresh snapshots.
func (s *SnapshotStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]*Table)
	s.joinCache = nil
	s.joinCacheKey = ""
}

func (s *SnapshotStore) ensure(name string) (*Table, error) {
	s.mu.RLock()
	t, ok := s.tables[name]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[name]; ok {
		return t, nil
	}

	path, ok := s.paths[name]
	if !ok {
		return nil, fmt.Errorf("no snapshot source configured for table %s", name)
	}
	t, err := loadCSVTable(name, path)
	if err != nil {
		return nil, err
	}
	s.tables[name] = t
	slog.Info("loaded tabular snapshot", "table", name, "path", path, "rows", len(t.Rows))
	return t, nil
}

func loadCSVTable(name, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read snapshot %s: empty file", path)
	}
	return NewTable(name, records[0], records[1:]), nil
}

func (s *SnapshotStore) Columns(ctx context.Context, table string) (map[string]bool, error) {
	t, err := s.ensure(table)
	if err != nil {
		return nil, err
	}
	columns := make(map[string]bool, len(t.Columns))
	for name := range t.index {
		columns[name] = true
	}
	return columns, nil
}

func (s *SnapshotStore) tableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool, len(s.paths)+len(s.tables))
	var names []string
	for name := range s.paths {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range s.tables {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func (s *SnapshotStore) LatestYear(ctx context.Context, regionCode string) (string, error) {
	latest := ""
	for _, name := range s.tableNames() {
		t, err := s.ensure(name)
		if err != nil {
			return "", err
		}
		yearIdx, ok := t.col(registry.ColumnYear)
		if !ok {
			continue
		}
		stateIdx, ok := t.col(registry.ColumnState)
		if !ok {
			continue
		}
		for _, row := range t.Rows {
			if cell(row, stateIdx) != regionCode {
				continue
			}
			if y := cell(row, yearIdx); y > latest {
				latest = y
			}
		}
	}
	return latest, nil
}

func (s *SnapshotStore) Execute(ctx context.Context, plan models.QueryPlan) (*models.AnalyticsResult, error) {
	switch plan.Kind {
	case models.PlanComparison:
		return s.executeComparison(plan)
	case models.PlanComposite:
		return s.executeComposite(plan)
	default:
		return s.executeAggregate(plan)
	}
}

func (s *SnapshotStore) executeAggregate(plan models.QueryPlan) (*models.AnalyticsResult, error) {
	t, err := s.ensure(plan.Table)
	if err != nil {
		return nil, err
	}
	rows := filterRows(t, plan.Filters)

	if plan.GroupColumn == "" {
		total := sumColumn(t, rows, plan.ValueColumn, plan.Derived)
		result := finalizeResult(plan, []string{"Total"}, []float64{total})
		s.attachKPIExtras(t, rows, plan, result)
		return result, nil
	}

	groupIdx, ok := t.col(plan.GroupColumn)
	if !ok {
		// The planner degrades unknown dimensions before execution; a miss
		// here means the plan and snapshot disagree.
		return nil, fmt.Errorf("snapshot %s has no column %s", plan.Table, plan.GroupColumn)
	}

	sums := make(map[string]float64)
	for _, row := range rows {
		label := cell(row, groupIdx)
		if label == "" {
			label = "Unknown"
		}
		sums[label] += rowValue(t, row, plan.ValueColumn, plan.Derived)
	}

	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	if plan.Chronological {
		sort.Strings(labels)
	} else {
		sort.Slice(labels, func(i, j int) bool {
			if sums[labels[i]] != sums[labels[j]] {
				return sums[labels[i]] > sums[labels[j]]
			}
			return labels[i] < labels[j]
		})
		if plan.Limit > 0 && len(labels) > plan.Limit {
			labels = labels[:plan.Limit]
		}
	}

	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = sums[label]
	}
	return finalizeResult(plan, labels, values), nil
}

func (s *SnapshotStore) attachKPIExtras(t *Table, rows [][]string, plan models.QueryPlan, result *models.AnalyticsResult) {
	if plan.Table != registry.TableCropArea {
		return
	}
	if _, ok := t.col("no_of_farmers"); ok {
		result.FarmersCount = int64(sumColumn(t, rows, "no_of_farmers", false))
	}
	if _, ok := t.col("no_of_plots"); ok {
		result.PlotsCount = int64(sumColumn(t, rows, "no_of_plots", false))
	}
}

func (s *SnapshotStore) executeComparison(plan models.QueryPlan) (*models.AnalyticsResult, error) {
	if len(plan.Comparison) == 2 && plan.Comparison[0].Table != plan.Comparison[1].Table {
		return s.executeJoinedComparison(plan)
	}

	labels := make([]string, 0, len(plan.Comparison))
	values := make([]float64, 0, len(plan.Comparison))
	for _, leg := range plan.Comparison {
		t, err := s.ensure(leg.Table)
		if err != nil {
			return nil, err
		}
		filters := plan.Filters
		if leg.SeasonEq != "" {
			filters = append(append([]models.Filter{}, filters...), models.Filter{
				Column: registry.ColumnSeason, Op: models.FilterIEq, Values: []string{leg.SeasonEq},
			})
		}
		rows := filterRows(t, filters)
		labels = append(labels, leg.Label)
		values = append(values, sumColumn(t, rows, leg.Column, false))
	}
	return finalizeResult(plan, labels, values), nil
}

// executeJoinedComparison resolves a cross-source comparison through the
// keyed outer join. Each side is first aggregated per common key, then
// the key sets are unioned so rows present in only one source survive.
// The joined table is the single cached merge; Reload drops it.
func (s *SnapshotStore) executeJoinedComparison(plan models.QueryPlan) (*models.AnalyticsResult, error) {
	legA, legB := plan.Comparison[0], plan.Comparison[1]

	joined, err := s.joinedTable(legA, legB)
	if err != nil {
		return nil, err
	}

	rows := filterRows(joined, plan.Filters)
	labels := []string{legA.Label, legB.Label}
	values := []float64{
		sumColumn(joined, rows, "__left", false),
		sumColumn(joined, rows, "__right", false),
	}
	return finalizeResult(plan, labels, values), nil
}

func (s *SnapshotStore) joinedTable(legA, legB models.ComparisonLeg) (*Table, error) {
	cacheKey := strings.Join([]string{legA.Table, legA.Column, legB.Table, legB.Column}, "|")

	s.mu.RLock()
	if s.joinCacheKey == cacheKey && s.joinCache != nil {
		cached := s.joinCache
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	ta, err := s.ensure(legA.Table)
	if err != nil {
		return nil, err
	}
	tb, err := s.ensure(legB.Table)
	if err != nil {
		return nil, err
	}

	// Keys usable for the join are those present in both sides.
	var keys []string
	for _, key := range joinKeyColumns {
		if _, ok := ta.col(key); !ok {
			continue
		}
		if _, ok := tb.col(key); !ok {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("tables %s and %s share no join keys", legA.Table, legB.Table)
	}

	left := aggregateByKey(ta, keys, legA.Column)
	right := aggregateByKey(tb, keys, legB.Column)

	union := make(map[string]bool, len(left)+len(right))
	for k := range left {
		union[k] = true
	}
	for k := range right {
		union[k] = true
	}

	columns := append(append([]string{}, keys...), "__left", "__right")
	rows := make([][]string, 0, len(union))
	for k := range union {
		row := strings.Split(k, "\x1f")
		row = append(row,
			strconv.FormatFloat(left[k], 'f', -1, 64),
			strconv.FormatFloat(right[k], 'f', -1, 64),
		)
		rows = append(rows, row)
	}
	joined := NewTable("joined:"+cacheKey, columns, rows)

	s.mu.Lock()
	s.joinCacheKey = cacheKey
	s.joinCache = joined
	s.mu.Unlock()
	return joined, nil
}

func aggregateByKey(t *Table, keys []string, valueColumn string) map[string]float64 {
	keyIdx := make([]int, len(keys))
	for i, key := range keys {
		keyIdx[i], _ = t.col(key)
	}

	sums := make(map[string]float64)
	parts := make([]string, len(keys))
	for _, row := range t.Rows {
		for i, idx := range keyIdx {
			parts[i] = cell(row, idx)
		}
		sums[strings.Join(parts, "\x1f")] += rowValue(t, row, valueColumn, false)
	}
	return sums
}

func (s *SnapshotStore) executeComposite(plan models.QueryPlan) (*models.AnalyticsResult, error) {
	items := make([]models.KPIValue, 0, len(plan.Composite))
	for _, item := range plan.Composite {
		t, err := s.ensure(item.Table)
		if err != nil {
			return nil, err
		}
		rows := filterRows(t, plan.Filters)
		items = append(items, models.KPIValue{
			Title: item.Title,
			Value: sumColumn(t, rows, item.Column, item.Derived),
			Unit:  item.Unit,
		})
	}
	return finalizeComposite(plan, items), nil
}

// filterRows selects matching rows into a fresh slice; cached rows are
// never mutated. Filters on columns the table does not carry are skipped;
// the planner only emits such filters for optional narrowing, and the
// region column exists in every source table.
func filterRows(t *Table, filters []models.Filter) [][]string {
	matched := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if rowMatches(t, row, filters) {
			matched = append(matched, row)
		}
	}
	return matched
}

func rowMatches(t *Table, row []string, filters []models.Filter) bool {
	for _, f := range filters {
		idx, ok := t.col(f.Column)
		if !ok {
			continue
		}
		value := cell(row, idx)
		switch f.Op {
		case models.FilterEq:
			if value != f.Values[0] {
				return false
			}
		case models.FilterIEq:
			if !strings.EqualFold(value, f.Values[0]) {
				return false
			}
		case models.FilterIContainsAny:
			lower := strings.ToLower(value)
			matched := false
			for _, v := range f.Values {
				if strings.Contains(lower, strings.ToLower(v)) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case models.FilterYearEq:
			matched := false
			for _, v := range f.Values {
				if value == v {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

func sumColumn(t *Table, rows [][]string, column string, derived bool) float64 {
	total := 0.0
	for _, row := range rows {
		total += rowValue(t, row, column, derived)
	}
	return total
}

func rowValue(t *Table, row []string, column string, derived bool) float64 {
	if derived {
		closedIdx, ok1 := t.col("crop_area_closed")
		approvedIdx, ok2 := t.col("crop_area_approved")
		if !ok1 || !ok2 {
			return 0
		}
		return parseFloat(cell(row, closedIdx)) - parseFloat(cell(row, approvedIdx))
	}
	idx, ok := t.col(column)
	if !ok {
		return 0
	}
	return parseFloat(cell(row, idx))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
