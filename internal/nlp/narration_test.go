package nlp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"analytics-service/internal/models"

	"github.com/stretchr/testify/assert"
)

type stubTextModel struct {
	text string
	err  error
}

func (s *stubTextModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func kpiResult() *models.AnalyticsResult {
	return &models.AnalyticsResult{
		Kind: models.PlanAggregate, Title: "Approved Crop Area", Unit: "Hectares",
		Labels: []string{"Total"}, Values: []float64{1234.5}, Total: 1234.5,
		ChartType: models.ChartKPI,
	}
}

func TestNarrate_NoData(t *testing.T) {
	n := NewNarrator(nil, time.Second)

	text := n.Narrate(context.Background(), &models.AnalyticsResult{NoData: true}, "Maharashtra", "crop area")
	assert.Contains(t, text, "No data is available")
	assert.Contains(t, text, "Maharashtra")
}

func TestNarrate_KPITemplate(t *testing.T) {
	n := NewNarrator(nil, time.Second)

	result := kpiResult()
	result.FarmersCount = 42
	result.PlotsCount = 7

	text := n.Narrate(context.Background(), result, "Maharashtra", "crop area")
	assert.Contains(t, text, "approved crop area")
	assert.Contains(t, text, "1234.50")
	assert.Contains(t, text, "42 farmers")
	assert.Contains(t, text, "7 plots")
}

func TestNarrate_KPIIncludesDegradeNote(t *testing.T) {
	n := NewNarrator(nil, time.Second)

	result := kpiResult()
	result.Note = "Dimension 'Crop' is not available in our cultivated_summary_data records."

	text := n.Narrate(context.Background(), result, "Maharashtra", "crop wise surveyed area")
	assert.Contains(t, text, "not available")
}

func TestNarrate_DistributionTemplate(t *testing.T) {
	n := NewNarrator(nil, time.Second)

	result := &models.AnalyticsResult{
		Kind: models.PlanAggregate, Title: "Approved Crop Area by District", Unit: "Hectares",
		Labels: []string{"497", "498", "499"},
		Values: []float64{700, 200, 100}, Total: 1000,
		ChartType: models.ChartBar,
	}
	text := n.Narrate(context.Background(), result, "Maharashtra", "district wise crop area")
	assert.Contains(t, text, "497 leads")
	assert.Contains(t, text, "70.0%")
	assert.Contains(t, text, "concentration")
}

func TestNarrate_DistributionLeaderFoundInChronologicalOrder(t *testing.T) {
	n := NewNarrator(nil, time.Second)

	// Year series are sorted by label, so the leader may sit anywhere.
	result := &models.AnalyticsResult{
		Kind: models.PlanAggregate, Title: "Crop Area by Year", Unit: "Hectares",
		Labels: []string{"2021-2022", "2022-2023", "2023-2024"},
		Values: []float64{100, 900, 200}, Total: 1200,
		ChartType: models.ChartLine,
	}
	text := n.Narrate(context.Background(), result, "Maharashtra", "year wise crop area")
	assert.Contains(t, text, "2022-2023 leads")
}

func TestNarrate_ComparisonTemplate(t *testing.T) {
	n := NewNarrator(nil, time.Second)

	result := &models.AnalyticsResult{
		Kind: models.PlanComparison, Title: "Irrigated vs Unirrigated Area", Unit: "Hectares",
		Labels: []string{"Irrigated", "Unirrigated"},
		Values: []float64{300, 600}, Total: 900,
		ChartType: models.ChartBar,
	}
	text := n.Narrate(context.Background(), result, "Maharashtra", "irrigated vs unirrigated")
	assert.Contains(t, text, "Unirrigated records 600.00")
	assert.Contains(t, text, "2.0 times")
}

func TestNarrate_CompositeTemplate(t *testing.T) {
	n := NewNarrator(nil, time.Second)

	result := &models.AnalyticsResult{
		Kind: models.PlanComposite, Title: "Approved Crop Area & Registered Farmers",
		Labels: []string{"Approved Crop Area", "Registered Farmers"},
		Values: []float64{500, 80}, Total: 580,
		Items: []models.KPIValue{
			{Title: "Approved Crop Area", Value: 500, Unit: "Hectares"},
			{Title: "Registered Farmers", Value: 80, Unit: "Farmers"},
		},
		ChartType: models.ChartKPI,
	}
	text := n.Narrate(context.Background(), result, "Maharashtra", "crop area and farmers")
	assert.Contains(t, text, "approved crop area at 500.00 Hectares")
	assert.Contains(t, text, "registered farmers at 80.00 Farmers")
}

func TestNarrate_ModelOutputAcceptedInsideWordGate(t *testing.T) {
	sentence := strings.Repeat("insightful analysis of the agricultural data ", 8) // ~48 words
	n := NewNarrator(&stubTextModel{text: sentence}, time.Second)

	text := n.Narrate(context.Background(), kpiResult(), "Maharashtra", "crop area")
	assert.Equal(t, strings.TrimSpace(sentence), text)
}

func TestNarrate_ModelOutputAcceptedAtWordGateBounds(t *testing.T) {
	// 30 and 150 words are inside the accepted range.
	for _, words := range []int{30, 150} {
		sentence := strings.TrimSpace(strings.Repeat("word ", words))
		n := NewNarrator(&stubTextModel{text: sentence}, time.Second)

		text := n.Narrate(context.Background(), kpiResult(), "Maharashtra", "crop area")
		assert.Equal(t, sentence, text)
	}
}

func TestNarrate_ModelOutputOutsideWordGateFallsBack(t *testing.T) {
	for _, words := range []int{29, 151} {
		sentence := strings.TrimSpace(strings.Repeat("word ", words))
		n := NewNarrator(&stubTextModel{text: sentence}, time.Second)

		text := n.Narrate(context.Background(), kpiResult(), "Maharashtra", "crop area")
		assert.Contains(t, text, "approved crop area")
	}
}

func TestNarrate_ModelOutputTooShortFallsBack(t *testing.T) {
	n := NewNarrator(&stubTextModel{text: "too short"}, time.Second)

	text := n.Narrate(context.Background(), kpiResult(), "Maharashtra", "crop area")
	assert.Contains(t, text, "approved crop area", "short model output must fall back to the template")
}

func TestNarrate_ModelErrorFallsBack(t *testing.T) {
	n := NewNarrator(&stubTextModel{err: errors.New("unavailable")}, time.Second)

	text := n.Narrate(context.Background(), kpiResult(), "Maharashtra", "crop area")
	assert.Contains(t, text, "approved crop area")
}

func TestConversationalist_FallbacksWithoutModel(t *testing.T) {
	c := NewConversationalist(nil, time.Second)

	reply := c.Reply(context.Background(), models.ConversationGreeting, "hi")
	assert.Contains(t, reply, "Analytics Assistant")

	reply = c.Reply(context.Background(), models.ConversationType("unknown"), "???")
	assert.Equal(t, conversationFallbacks[models.ConversationHelp], reply)
}

func TestOffTopicReply_ListsSuggestions(t *testing.T) {
	reply := OffTopicReply()
	for _, q := range SuggestedQueries {
		assert.Contains(t, reply, q)
	}
}
