package nlp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"analytics-service/internal/models"
)

// Narration acceptance bounds for model output: anything shorter reads as
// truncated, anything longer as rambling.
const (
	narrationMinWords = 30
	narrationMaxWords = 150
)

const narrationPrompt = `Generate a professional analytical narration for this agriculture data.
Write 60-100 words with insights.

Query: %q
State: %s
Title: %s
Total: %.2f %s
Categories: %v
Values: %v

Requirements:
1. Start with context about the data
2. Highlight the key finding (total or top item)
3. Provide one analytical insight or pattern
4. Keep it professional and data-driven
5. Do NOT use bullet points

Write the narration now:`

// Narrator converts an analytics result into explanatory text. The
// external model is consulted first; its output is accepted only inside
// the word-count bounds, and the deterministic templates below are always
// sufficient on their own.
type Narrator struct {
	model   TextModel
	timeout time.Duration
}

func NewNarrator(model TextModel, timeout time.Duration) *Narrator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Narrator{model: model, timeout: timeout}
}

// Narrate always returns non-empty text.
func (n *Narrator) Narrate(ctx context.Context, result *models.AnalyticsResult, regionName, query string) string {
	if result.NoData {
		return fmt.Sprintf("No data is available for the requested analysis in %s.", regionName)
	}

	if n.model != nil {
		if text, ok := n.tryModel(ctx, result, regionName, query); ok {
			return text
		}
	}
	return n.template(result, regionName)
}

func (n *Narrator) tryModel(ctx context.Context, result *models.AnalyticsResult, regionName, query string) (string, bool) {
	mctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	prompt := fmt.Sprintf(narrationPrompt,
		query, regionName, result.Title, result.Total, result.Unit, result.Labels, result.Values)

	text, err := n.model.GenerateText(mctx, prompt)
	if err != nil {
		slog.Debug("model narration unavailable, using template", "error", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	words := len(strings.Fields(text))
	if words < narrationMinWords || words > narrationMaxWords {
		slog.Debug("model narration rejected by length gate", "words", words)
		return "", false
	}
	return text, true
}

func (n *Narrator) template(result *models.AnalyticsResult, regionName string) string {
	switch {
	case result.Kind == models.PlanComposite || len(result.Items) > 0:
		return compositeNarration(result, regionName)
	case result.Kind == models.PlanComparison && len(result.Values) == 2:
		return comparisonNarration(result, regionName)
	case len(result.Values) == 1:
		return kpiNarration(result, regionName)
	default:
		return distributionNarration(result, regionName)
	}
}

func kpiNarration(result *models.AnalyticsResult, regionName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The %s for %s stands at %.2f %s.",
		strings.ToLower(result.Title), regionName, result.Total, result.Unit)

	var extras []string
	if result.FarmersCount > 0 {
		extras = append(extras, fmt.Sprintf("%d farmers", result.FarmersCount))
	}
	if result.PlotsCount > 0 {
		extras = append(extras, fmt.Sprintf("%d plots", result.PlotsCount))
	}
	if len(extras) > 0 {
		fmt.Fprintf(&b, " This encompasses %s.", strings.Join(extras, " and "))
	}
	if result.Note != "" {
		fmt.Fprintf(&b, " Note: %s", result.Note)
	}
	return b.String()
}

func distributionNarration(result *models.AnalyticsResult, regionName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of %s in %s reveals a total of %.2f %s.",
		strings.ToLower(result.Title), regionName, result.Total, result.Unit)

	topLabel := result.Labels[0]
	topValue := result.Values[0]
	// Chronological results are not sorted by value; find the leader.
	for i, v := range result.Values {
		if v > topValue {
			topValue = v
			topLabel = result.Labels[i]
		}
	}
	topPct := 0.0
	if result.Total > 0 {
		topPct = topValue / result.Total * 100
	}
	fmt.Fprintf(&b, " %s leads with %.2f %s (%.1f%% share).", topLabel, topValue, result.Unit, topPct)

	if len(result.Values) >= 3 && result.Total > 0 {
		top3 := topShareOfSorted(result.Values, 3)
		top3Pct := top3 / result.Total * 100
		if top3Pct > 60 {
			fmt.Fprintf(&b, " The top 3 categories account for %.1f%% of the total, indicating concentration.", top3Pct)
		} else {
			b.WriteString(" Distribution appears relatively balanced across categories.")
		}
	}
	return b.String()
}

func comparisonNarration(result *models.AnalyticsResult, regionName string) string {
	a, bVal := result.Values[0], result.Values[1]
	leadLabel, leadValue := result.Labels[0], a
	trailLabel, trailValue := result.Labels[1], bVal
	if bVal > a {
		leadLabel, leadValue = result.Labels[1], bVal
		trailLabel, trailValue = result.Labels[0], a
	}
	text := fmt.Sprintf("Comparing %s in %s: %s records %.2f %s against %.2f %s for %s.",
		strings.ToLower(result.Title), regionName,
		leadLabel, leadValue, result.Unit, trailValue, result.Unit, trailLabel)
	if trailValue > 0 {
		text += fmt.Sprintf(" %s is %.1f times %s.", leadLabel, leadValue/trailValue, strings.ToLower(trailLabel))
	}
	return text
}

func compositeNarration(result *models.AnalyticsResult, regionName string) string {
	parts := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		parts = append(parts, fmt.Sprintf("%s at %.2f %s", strings.ToLower(item.Title), item.Value, item.Unit))
	}
	return fmt.Sprintf("Key figures for %s: %s.", regionName, strings.Join(parts, ", "))
}

// topShareOfSorted sums the k largest values without mutating the input.
func topShareOfSorted(values []float64, k int) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	for i := 0; i < k && i < len(sorted); i++ {
		maxIdx := i
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] > sorted[maxIdx] {
				maxIdx = j
			}
		}
		sorted[i], sorted[maxIdx] = sorted[maxIdx], sorted[i]
	}
	sum := 0.0
	for i := 0; i < k && i < len(sorted); i++ {
		sum += sorted[i]
	}
	return sum
}
