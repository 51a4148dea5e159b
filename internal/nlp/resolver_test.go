package nlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"analytics-service/internal/models"
	"analytics-service/internal/region"
	"analytics-service/internal/registry"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func newTestResolver(model IntentModel) *Resolver {
	regions := region.NewAuthority()
	regions.AddDistrict("27", "497", "Pune")
	regions.AddDistrict("27", "498", "Nagpur")
	regions.CompilePatterns()
	return NewResolver(registry.Default(), regions, model, time.Second, 10)
}

type stubIntentModel struct {
	intent *models.Intent
	err    error
}

func (s *stubIntentModel) ClassifyIntent(ctx context.Context, query string) (*models.Intent, error) {
	return s.intent, s.err
}

// ============================================================================
// CONVERSATION AND OFF-TOPIC ROUTING
// ============================================================================

func TestResolve_Greeting(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "hello there", "27")
	assert.Equal(t, models.ModeConversation, intent.Mode)
	assert.Equal(t, models.ConversationGreeting, intent.ConversationType)
}

func TestResolve_GreetingWordInLongQueryIsNotConversation(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "hello can you show me the district wise crop area for this year please", "27")
	assert.Equal(t, models.ModeAnalytics, intent.Mode, "greeting routing only applies to short messages")
}

func TestResolve_ThanksAndGoodbye(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "thanks a lot", "27")
	assert.Equal(t, models.ConversationThanks, intent.ConversationType)

	intent = r.Resolve(context.Background(), "ok bye", "27")
	assert.Equal(t, models.ConversationGoodbye, intent.ConversationType)
}

func TestResolve_Help(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "what can you help me with", "27")
	assert.Equal(t, models.ModeConversation, intent.Mode)
	assert.Equal(t, models.ConversationHelp, intent.ConversationType)
}

func TestResolve_OffTopic(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "what is the weather like tomorrow", "27")
	assert.Equal(t, models.ModeOffTopic, intent.Mode)
}

func TestResolve_OffTopicMarkerWithAgriVocabularyStaysAnalytics(t *testing.T) {
	r := newTestResolver(nil)

	// "rain today" appears but the query is about irrigated area.
	intent := r.Resolve(context.Background(), "given the rain today what is the irrigated area", "27")
	assert.Equal(t, models.ModeAnalytics, intent.Mode)
}

// ============================================================================
// ANALYTICS CLASSIFICATION
// ============================================================================

func TestResolve_DefaultIndicatorForVagueQuery(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "show me the data", "27")
	assert.Equal(t, models.ModeAnalytics, intent.Mode)
	assert.Equal(t, "crop_area", intent.Indicator)
	assert.Equal(t, models.IntentSummary, intent.IntentType)
}

func TestResolve_DistributionQuery(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "district-wise crop area", "27")
	assert.Equal(t, "crop_area", intent.Indicator)
	assert.Equal(t, "district", intent.Dimension)
	assert.Equal(t, models.IntentDistribution, intent.IntentType)
}

func TestResolve_PriorityPhraseBeatsKeywordScore(t *testing.T) {
	r := newTestResolver(nil)

	// "pending validation" must win although "crop area" vocabulary is
	// also present.
	intent := r.Resolve(context.Background(), "crop area pending validation", "27")
	assert.Equal(t, "pending_validation", intent.Indicator)
}

func TestResolve_SummaryWordSuppressesDimension(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "overall crop area summary", "27")
	assert.Empty(t, intent.Dimension)
	assert.Equal(t, models.IntentSummary, intent.IntentType)
}

func TestResolve_TotalStaysKPI(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "total farmers", "27")
	assert.Equal(t, "farmers", intent.Indicator)
	assert.Empty(t, intent.Dimension, "a total is a flat number, not a distribution")
}

func TestResolve_ComparisonBeatsComposite(t *testing.T) {
	r := newTestResolver(nil)

	// Both legs name indicator domains; without comparison priority this
	// would misread as a composite.
	intent := r.Resolve(context.Background(), "irrigated vs unirrigated area", "27")
	assert.Equal(t, models.IntentComparison, intent.IntentType)
	assert.Equal(t, "irrigated_vs_unirrigated", intent.Comparison)
	assert.Empty(t, intent.Indicators)
}

func TestResolve_CompositeQuery(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "show survey progress and crop area together", "27")
	assert.Equal(t, models.IntentComposite, intent.IntentType)
	assert.Contains(t, intent.Indicators, "surveyed_plots")
	assert.Contains(t, intent.Indicators, "crop_area")
}

func TestResolve_TopN(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "top 5 crops by approved area", "27")
	assert.Equal(t, 5, intent.TopN)
	assert.Equal(t, "crop", intent.Dimension)

	intent = r.Resolve(context.Background(), "top three districts by crop area", "27")
	assert.Equal(t, 3, intent.TopN)

	intent = r.Resolve(context.Background(), "district wise crop area", "27")
	assert.Equal(t, 10, intent.TopN, "default top-N applies when none is named")
}

func TestResolve_CropAndSeasonFilters(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "wheat area in rabi season", "27")
	assert.Equal(t, []string{"Wheat"}, intent.CropFilters)
	assert.Equal(t, "Rabi", intent.SeasonFilter)
}

// ============================================================================
// YEAR DETECTION
// ============================================================================

func TestResolve_YearForms(t *testing.T) {
	r := newTestResolver(nil)

	cases := map[string]string{
		"crop area in 2022-2023":    "2022-2023",
		"crop area for 2022-23":     "2022-2023",
		"crop area in 2022":         "2022-2023",
		"crop area this year":       models.YearCurrent,
		"crop area in current year": models.YearCurrent,
	}
	for query, want := range cases {
		intent := r.Resolve(context.Background(), query, "27")
		assert.Equal(t, want, intent.YearFilter, "query: %s", query)
	}
}

// ============================================================================
// REGION MENTIONS
// ============================================================================

func TestResolve_ForeignStateMention(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "show me crop data for gujarat", "27")
	assert.Equal(t, models.ModeAnalytics, intent.Mode)
	assert.Equal(t, "Gujarat", intent.MentionedState)
}

func TestResolve_DistrictScopedToAuthorizedState(t *testing.T) {
	r := newTestResolver(nil)

	intent := r.Resolve(context.Background(), "crop area in Pune", "27")
	assert.Equal(t, "497", intent.MentionedDistrictCode)
	assert.Equal(t, "Pune", intent.MentionedDistrictName)

	// Districts of foreign states are unknown in this scope.
	intent = r.Resolve(context.Background(), "crop area in Pune", "09")
	assert.Empty(t, intent.MentionedDistrictCode)
}

// ============================================================================
// MODEL PATH
// ============================================================================

func TestResolve_ModelFailureFallsBackToRules(t *testing.T) {
	r := newTestResolver(&stubIntentModel{err: errors.New("quota exceeded")})

	intent := r.Resolve(context.Background(), "district-wise crop area", "27")
	assert.Equal(t, models.ModeAnalytics, intent.Mode)
	assert.Equal(t, "district", intent.Dimension)
}

func TestResolve_ModelInvalidModeRejected(t *testing.T) {
	r := newTestResolver(&stubIntentModel{intent: &models.Intent{Mode: "banana"}})

	intent := r.Resolve(context.Background(), "total farmers", "27")
	assert.Equal(t, models.ModeAnalytics, intent.Mode)
	assert.Equal(t, "farmers", intent.Indicator)
}

func TestResolve_ModelOutputRegionsRedetected(t *testing.T) {
	// The model omits the region mention; the deterministic detector must
	// restore it so authorization cannot be bypassed.
	r := newTestResolver(&stubIntentModel{intent: &models.Intent{
		Mode: models.ModeAnalytics, Indicator: "crop_area",
	}})

	intent := r.Resolve(context.Background(), "crop area for gujarat", "27")
	assert.Equal(t, "Gujarat", intent.MentionedState)
}

func TestResolve_ModelYearNormalized(t *testing.T) {
	r := newTestResolver(&stubIntentModel{intent: &models.Intent{
		Mode: models.ModeAnalytics, Indicator: "crop_area", YearFilter: "2022-23",
	}})

	intent := r.Resolve(context.Background(), "crop area", "27")
	assert.Equal(t, "2022-2023", intent.YearFilter)
}

func TestResolve_ModelUnknownIndicatorReplaced(t *testing.T) {
	r := newTestResolver(&stubIntentModel{intent: &models.Intent{
		Mode: models.ModeAnalytics, Indicator: "made_up_metric",
	}})

	intent := r.Resolve(context.Background(), "total farmers", "27")
	assert.Equal(t, "farmers", intent.Indicator)
}

// ============================================================================
// KEYWORD MATCHING EDGE CASES
// ============================================================================

func TestMatchKeyword_ShortKeywordsNeedWordBoundaries(t *testing.T) {
	assert.False(t, matchKeyword("narration of results", "na"))
	assert.True(t, matchKeyword("na area for this region", "na"))
	assert.True(t, matchKeyword("irrigated area breakdown", "area"))
}
