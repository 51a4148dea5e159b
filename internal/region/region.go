package region

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Authority maps LGD authorization codes to display names and detects
// region mentions inside free text. It is built once at startup and
// read-only afterwards.
type Authority struct {
	stateByCode map[string]string
	codeByState map[string]string
	stateNames  []string // lowercased, longest first

	districtCodeByName map[string]map[string]string // state code -> lower name -> district code
	districtNameByCode map[string]string
	districtPatterns   map[string][]districtPattern
}

type districtPattern struct {
	re   *regexp.Regexp
	name string // lowercased
}

// seedStates covers the states present in the pilot datasets; CSV loads
// extend or override it.
var seedStates = map[string]string{
	"27": "Maharashtra",
	"09": "Uttar Pradesh",
	"24": "Gujarat",
	"10": "Bihar",
	"33": "Tamil Nadu",
	"29": "Karnataka",
}

func NewAuthority() *Authority {
	a := &Authority{
		stateByCode:        make(map[string]string),
		codeByState:        make(map[string]string),
		districtCodeByName: make(map[string]map[string]string),
		districtNameByCode: make(map[string]string),
		districtPatterns:   make(map[string][]districtPattern),
	}
	for code, name := range seedStates {
		a.addState(code, name)
	}
	a.rebuildStateIndex()
	return a
}

func (a *Authority) addState(code, name string) {
	a.stateByCode[code] = name
	a.codeByState[strings.ToLower(name)] = code
}

func (a *Authority) rebuildStateIndex() {
	names := make([]string, 0, len(a.codeByState))
	for name := range a.codeByState {
		names = append(names, name)
	}
	// Longest first so "uttar pradesh" wins over any shorter overlap;
	// alphabetical tie-break keeps detection deterministic.
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	a.stateNames = names
}

// LoadStatesCSV replaces the seed mapping with state_lgd_code,state_name
// rows from a CSV export.
func (a *Authority) LoadStatesCSV(path string) error {
	rows, header, err := readCSV(path)
	if err != nil {
		return err
	}
	codeIdx, ok := header["state_lgd_code"]
	nameIdx, ok2 := header["state_name"]
	if !ok || !ok2 {
		return fmt.Errorf("state csv %s: missing state_lgd_code/state_name columns", path)
	}
	for _, row := range rows {
		code := strings.TrimSpace(row[codeIdx])
		name := titleCase(strings.TrimSpace(row[nameIdx]))
		if code == "" || name == "" {
			continue
		}
		a.addState(code, name)
	}
	a.rebuildStateIndex()
	slog.Info("loaded state LGD mapping", "path", path, "states", len(a.stateByCode))
	return nil
}

// LoadDistrictsCSV loads per-state district mappings and precompiles the
// word-boundary detection patterns, longest district name first.
func (a *Authority) LoadDistrictsCSV(path string) error {
	rows, header, err := readCSV(path)
	if err != nil {
		return err
	}
	dCodeIdx, ok := header["district_lgd_code"]
	dNameIdx, ok2 := header["district_name"]
	sCodeIdx, ok3 := header["state_lgd_code"]
	if !ok || !ok2 || !ok3 {
		return fmt.Errorf("district csv %s: missing required columns", path)
	}
	for _, row := range rows {
		a.AddDistrict(strings.TrimSpace(row[sCodeIdx]), strings.TrimSpace(row[dCodeIdx]), strings.TrimSpace(row[dNameIdx]))
	}
	a.compileDistrictPatterns()
	slog.Info("loaded district LGD mapping", "path", path, "districts", len(a.districtNameByCode))
	return nil
}

// AddDistrict registers one district under its parent state. Callers must
// invoke CompilePatterns (or a CSV loader) before detection.
func (a *Authority) AddDistrict(stateCode, districtCode, districtName string) {
	if stateCode == "" || districtCode == "" || districtName == "" {
		return
	}
	if a.districtCodeByName[stateCode] == nil {
		a.districtCodeByName[stateCode] = make(map[string]string)
	}
	a.districtCodeByName[stateCode][strings.ToLower(districtName)] = districtCode
	a.districtNameByCode[districtCode] = titleCase(districtName)
}

// CompilePatterns rebuilds the district detection regexes.
func (a *Authority) CompilePatterns() {
	a.compileDistrictPatterns()
}

func (a *Authority) compileDistrictPatterns() {
	a.districtPatterns = make(map[string][]districtPattern, len(a.districtCodeByName))
	for stateCode, districts := range a.districtCodeByName {
		names := make([]string, 0, len(districts))
		for name := range districts {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) > len(names[j])
			}
			return names[i] < names[j]
		})
		patterns := make([]districtPattern, 0, len(names))
		for _, name := range names {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
			patterns = append(patterns, districtPattern{re: re, name: name})
		}
		a.districtPatterns[stateCode] = patterns
	}
}

// StateName resolves a code to a display name. Unknown codes get a
// synthesized placeholder, never an error.
func (a *Authority) StateName(code string) string {
	if name, ok := a.stateByCode[code]; ok {
		return name
	}
	return "LGD " + code
}

// ResolveStateName maps a state name (any case) to its LGD code.
func (a *Authority) ResolveStateName(name string) (string, bool) {
	code, ok := a.codeByState[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// DetectState finds the first known state name mentioned in the query,
// preferring longer names.
func (a *Authority) DetectState(query string) (code, name string, ok bool) {
	q := strings.ToLower(query)
	for _, stateName := range a.stateNames {
		if strings.Contains(q, stateName) {
			c := a.codeByState[stateName]
			return c, a.stateByCode[c], true
		}
	}
	return "", "", false
}

// DetectDistrict finds a district of the given state mentioned in the
// query. Longest-name-first, word-boundary matching avoids a short
// district name matching inside a longer token.
func (a *Authority) DetectDistrict(query, stateCode string) (code, name string, ok bool) {
	for _, p := range a.districtPatterns[stateCode] {
		if p.re.MatchString(query) {
			c := a.districtCodeByName[stateCode][p.name]
			display := a.districtNameByCode[c]
			if display == "" {
				display = titleCase(p.name)
			}
			return c, display, true
		}
	}
	return "", "", false
}

// DistrictName resolves a district code to its display name, falling back
// to the raw code.
func (a *Authority) DistrictName(code string) string {
	if name, ok := a.districtNameByCode[code]; ok {
		return name
	}
	return code
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("read %s: empty file", path)
	}
	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		header[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return records[1:], header, nil
}
