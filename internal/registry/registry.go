package registry

// Static bindings between query vocabulary and physical columns. The
// registry is immutable after construction and injected into every
// component that needs it.

type Indicator struct {
	Key      string
	Table    string
	Column   string
	Title    string
	Unit     string
	Keywords []string
	// Derived marks a computed column; executors evaluate DerivedExpr
	// instead of reading Column directly.
	Derived bool
}

type Dimension struct {
	Key      string
	Column   string
	Title    string
	Keywords []string
	// Ordinal marks a time axis: results order chronologically ascending
	// instead of by value, with no row cap.
	Ordinal bool
}

type ComparisonLeg struct {
	Label    string
	Table    string
	Column   string
	SeasonEq string
}

type Comparison struct {
	Key      string
	Title    string
	Unit     string
	Keywords []string
	Legs     [2]ComparisonLeg
}

type Registry struct {
	indicators  []Indicator
	dimensions  []Dimension
	comparisons []Comparison

	indicatorByKey  map[string]Indicator
	dimensionByKey  map[string]Dimension
	comparisonByKey map[string]Comparison

	defaultIndicator string
}

const (
	TableCropArea   = "crop_area_data"
	TableAggregate  = "aggregate_summary_data"
	TableCultivated = "cultivated_summary_data"

	ColumnState    = "state_lgd_code"
	ColumnDistrict = "district_lgd_code"
	ColumnSeason   = "season"
	ColumnYear     = "year"
	ColumnCrop     = "crop_name_eng"

	// PendingExpr is the derived value of the pending-validation indicator.
	PendingExpr = "crop_area_closed - crop_area_approved"
)

func New(indicators []Indicator, dimensions []Dimension, comparisons []Comparison, defaultIndicator string) *Registry {
	r := &Registry{
		indicators:       indicators,
		dimensions:       dimensions,
		comparisons:      comparisons,
		indicatorByKey:   make(map[string]Indicator, len(indicators)),
		dimensionByKey:   make(map[string]Dimension, len(dimensions)),
		comparisonByKey:  make(map[string]Comparison, len(comparisons)),
		defaultIndicator: defaultIndicator,
	}
	for _, ind := range indicators {
		r.indicatorByKey[ind.Key] = ind
	}
	for _, dim := range dimensions {
		r.dimensionByKey[dim.Key] = dim
	}
	for _, cmp := range comparisons {
		r.comparisonByKey[cmp.Key] = cmp
	}
	return r
}

// Indicators returns the registry's indicators in declaration order. The
// order is load-bearing: keyword-score ties resolve to the earliest entry.
func (r *Registry) Indicators() []Indicator { return r.indicators }

func (r *Registry) Dimensions() []Dimension { return r.dimensions }

func (r *Registry) Comparisons() []Comparison { return r.comparisons }

func (r *Registry) Indicator(key string) (Indicator, bool) {
	ind, ok := r.indicatorByKey[key]
	return ind, ok
}

func (r *Registry) Dimension(key string) (Dimension, bool) {
	dim, ok := r.dimensionByKey[key]
	return dim, ok
}

func (r *Registry) Comparison(key string) (Comparison, bool) {
	cmp, ok := r.comparisonByKey[key]
	return cmp, ok
}

// DefaultIndicator is the guaranteed fallback when nothing in the query
// matches any indicator vocabulary.
func (r *Registry) DefaultIndicator() Indicator {
	return r.indicatorByKey[r.defaultIndicator]
}
