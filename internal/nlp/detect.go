package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"analytics-service/internal/models"
	"analytics-service/internal/registry"
)

// phraseGroup maps a set of trigger phrases to a registry key. Groups are
// evaluated in order; the most specific phrases must come first.
type phraseGroup struct {
	phrases []string
	key     string
}

// Priority phrase groups for indicator detection. "pending validation"
// must win before a generic "pending", "surveyed area" before "survey".
var indicatorPhrases = []phraseGroup{
	{[]string{"pending validation", "pending approval", "not approved", "awaiting approval",
		"validation pending", "crops pending", "pending crops", "under validation"}, "pending_validation"},
	{[]string{"cultivated area", "cultivated summary", "cultivation summary", "cultivated land",
		"total surveyed area", "surveyed area", "survey area", "agricultural area"}, "surveyed_area"},
	{[]string{"survey progress", "plots surveyed", "surveyed plots", "survey status",
		"survey completed", "surveyed so far"}, "surveyed_plots"},
	{[]string{"irrigated area", "irrigation area", "irrigated land"}, "irrigated_area"},
	{[]string{"unirrigated area", "unirrigated land", "rainfed area"}, "unirrigated_area"},
	{[]string{"fallow area", "fallow land", "uncultivated"}, "fallow_area"},
	{[]string{"farmer count", "number of farmers", "total farmers", "registered farmers",
		"how many farmers"}, "farmers"},
	{[]string{"total plots", "number of plots", "plot count"}, "total_plots"},
	{[]string{"assigned plots", "plots assigned"}, "assigned_plots"},
	{[]string{"crop area", "approved area", "approved crop", "crop status"}, "crop_area"},
	{[]string{"closed area", "closed crop", "crop closed"}, "crop_area_closed"},
	{[]string{"surveyors", "surveyor count", "number of surveyors"}, "surveyors"},
	{[]string{"survey approved", "approved surveys", "surveys approved"}, "survey_approved"},
	{[]string{"under review", "pending review", "surveys pending"}, "survey_under_review"},
	{[]string{"harvested area", "harvest area"}, "harvested_area"},
}

var dimensionPhrases = []phraseGroup{
	{[]string{"district-wise", "district wise", "by district", "districtwise",
		"across districts", "each district", "per district"}, "district"},
	{[]string{"crop-wise", "crop wise", "by crop", "cropwise", "each crop",
		"per crop", "which crops", "which crop", "top crops"}, "crop"},
	{[]string{"season-wise", "season wise", "by season", "seasonwise",
		"each season", "per season", "which season"}, "season"},
	{[]string{"year-wise", "year wise", "by year", "yearwise", "yearly",
		"annual", "each year", "per year", "which year", "trend"}, "year"},
	{[]string{"village-wise", "village wise", "by village", "villagewise"}, "village"},
	{[]string{"irrigation-wise", "by irrigation", "irrigation source"}, "irrigation"},
}

var comparisonPhrases = []phraseGroup{
	{[]string{"irrigated vs unirrigated", "irrigated and unirrigated",
		"irrigated versus unirrigated", "compare irrigated", "irrigation comparison"}, "irrigated_vs_unirrigated"},
	{[]string{"assigned vs surveyed", "assigned and surveyed", "assign vs survey",
		"assigned versus surveyed"}, "assigned_vs_surveyed"},
	{[]string{"approved vs closed", "approved and closed", "approved versus closed"}, "approved_vs_closed"},
	{[]string{"surveyable vs surveyed", "surveyable and surveyed"}, "surveyable_vs_surveyed"},
	{[]string{"rabi vs kharif", "rabi and kharif", "kharif vs rabi", "kharif and rabi",
		"rabi versus kharif", "compare rabi", "compare kharif"}, "rabi_vs_kharif"},
	{[]string{"fallow vs cultivated", "fallow and cultivated"}, "fallow_vs_cultivated"},
	{[]string{"surveyed vs approved", "surveyed and approved area", "surveyed versus approved"}, "surveyed_vs_approved_area"},
}

// Generic words that signal a distribution when paired with a domain noun.
var distributionWords = []string{
	"distribution", "breakdown", "split", "share", "top", "highest", "lowest", "which", "compare",
}

// Summary words suppress grouping even when a dimension keyword co-occurs.
var summaryWords = []string{"summary", "overall", "in total", "altogether"}

var (
	yearRangeFull  = regexp.MustCompile(`\b(\d{4})-(\d{4})\b`)
	yearRangeShort = regexp.MustCompile(`\b(\d{4})-(\d{2})\b`)
	yearSingle     = regexp.MustCompile(`\b(201[8-9]|202[0-9])\b`)
	topNPattern    = regexp.MustCompile(`top\s*(\d+)`)
	wordPattern    = regexp.MustCompile(`\b[\w']+\b`)
)

func matchPhraseGroups(q string, groups []phraseGroup) (string, bool) {
	for _, g := range groups {
		for _, phrase := range g.phrases {
			if strings.Contains(q, phrase) {
				return g.key, true
			}
		}
	}
	return "", false
}

// matchKeyword matches a registry keyword inside normalized text. Short
// keywords only match on word boundaries so "na" cannot match inside
// "narration".
func matchKeyword(q, kw string) bool {
	if len(kw) > 3 {
		return strings.Contains(q, kw)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	return re.MatchString(q)
}

func (r *Resolver) detectIndicator(q string) string {
	if key, ok := matchPhraseGroups(q, indicatorPhrases); ok {
		return key
	}

	// Keyword-frequency score across the registry, weighted by phrase
	// length; ties resolve to the earliest registry entry.
	bestKey := ""
	bestScore := 0
	for _, ind := range r.reg.Indicators() {
		score := 0
		for _, kw := range ind.Keywords {
			if matchKeyword(q, kw) {
				score += len(strings.Fields(kw)) * 2
			}
		}
		if score > bestScore {
			bestScore = score
			bestKey = ind.Key
		}
	}
	if bestKey != "" {
		return bestKey
	}

	switch {
	case strings.Contains(q, "survey"):
		return "surveyed_plots"
	case strings.Contains(q, "cultivat"):
		return "surveyed_area"
	case strings.Contains(q, "farmer"):
		return "farmers"
	case strings.Contains(q, "plot"):
		return "total_plots"
	}
	return r.reg.DefaultIndicator().Key
}

// detectCompositeIndicators returns two or more indicator keys when the
// query names several indicator domains at once ("survey progress and crop
// area"). Matches come from the priority phrase groups only, so generic
// single-word vocabulary cannot fabricate a composite.
func (r *Resolver) detectCompositeIndicators(q string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, g := range indicatorPhrases {
		for _, phrase := range g.phrases {
			if strings.Contains(q, phrase) && !seen[g.key] {
				seen[g.key] = true
				keys = append(keys, g.key)
				break
			}
		}
	}
	if len(keys) < 2 {
		return nil
	}
	return keys
}

func (r *Resolver) detectDimension(q string) string {
	for _, w := range summaryWords {
		if strings.Contains(q, w) {
			return ""
		}
	}

	if key, ok := matchPhraseGroups(q, dimensionPhrases); ok {
		return key
	}

	// "total" asks for a flat number; stop before the generic lookups so
	// "total farmers" stays a KPI.
	if matchKeyword(q, "total") {
		return ""
	}

	for _, dim := range r.reg.Dimensions() {
		for _, kw := range dim.Keywords {
			if matchKeyword(q, kw) {
				return dim.Key
			}
		}
	}

	for _, w := range distributionWords {
		if !matchKeyword(q, w) {
			continue
		}
		switch {
		case strings.Contains(q, "crop"):
			return "crop"
		case strings.Contains(q, "district"):
			return "district"
		case strings.Contains(q, "season"):
			return "season"
		case strings.Contains(q, "year"):
			return "year"
		}
	}
	return ""
}

func detectCrops(q string) []string {
	var crops []string
	for _, crop := range registry.CropNames {
		if matchKeyword(q, crop) {
			crops = append(crops, titleWords(crop))
		}
	}
	return crops
}

func detectSeason(q string) string {
	for _, season := range registry.SeasonNames {
		if matchKeyword(q, season) {
			return titleWords(season)
		}
	}
	return ""
}

// detectYear recognizes "YYYY-YYYY" and "YYYY-YY" ranges, bare recent
// years (expanded one year forward), and current-year phrasing. The
// normalized form is always "YYYY-YYYY".
func detectYear(q string) string {
	if strings.Contains(q, "current year") || strings.Contains(q, "this year") ||
		strings.Contains(q, "latest year") {
		return models.YearCurrent
	}

	if m := yearRangeFull.FindStringSubmatch(q); m != nil {
		return m[1] + "-" + m[2]
	}
	if m := yearRangeShort.FindStringSubmatch(q); m != nil {
		first, _ := strconv.Atoi(m[1])
		return m[1] + "-" + strconv.Itoa(first+1)
	}
	if m := yearSingle.FindStringSubmatch(q); m != nil {
		first, _ := strconv.Atoi(m[1])
		return m[1] + "-" + strconv.Itoa(first+1)
	}
	return ""
}

func detectComparison(q string) string {
	key, _ := matchPhraseGroups(q, comparisonPhrases)
	return key
}

func detectTopN(q string, fallback int) int {
	if m := topNPattern.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	switch {
	case strings.Contains(q, "top three"):
		return 3
	case strings.Contains(q, "top five"):
		return 5
	case strings.Contains(q, "top ten"):
		return 10
	}
	return fallback
}

func tokenize(q string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(q, -1) {
		words[w] = true
	}
	return words
}

func intersects(words map[string]bool, vocab []string) bool {
	for _, v := range vocab {
		if words[v] {
			return true
		}
	}
	return false
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
