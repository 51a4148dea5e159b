package nlp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"analytics-service/internal/models"
	"analytics-service/internal/region"
	"analytics-service/internal/registry"
)

// IntentModel is the optional external-model classification path. Its
// output is untrusted: the resolver validates it and silently falls back
// to the deterministic rules on any failure.
type IntentModel interface {
	ClassifyIntent(ctx context.Context, query string) (*models.Intent, error)
}

// TextModel is a best-effort text generator used for narration and
// conversation replies.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Resolver classifies free text into a structured Intent. Malformed input
// never raises; the worst case is a conversation/help intent.
type Resolver struct {
	reg     *registry.Registry
	regions *region.Authority

	model        IntentModel
	modelTimeout time.Duration

	defaultTopN int

	rules []rule
}

type queryContext struct {
	raw       string
	q         string // lowercased, trimmed
	words     map[string]bool
	wordCount int
	lgdCode   string
}

// rule is one (predicate, action) pair of the classification chain.
// Rules run in order, first match wins; the final rule always matches.
type rule struct {
	name    string
	applies func(qc *queryContext) bool
	resolve func(qc *queryContext) models.Intent
}

var (
	greetingWords = []string{"hi", "hello", "hey", "greetings", "hellow", "helo", "hii", "hai", "namaste"}
	thanksWords   = []string{"thanks", "thank", "thankyou"}
	goodbyeWords  = []string{"bye", "goodbye", "cya"}
	helpWords     = []string{"help", "guide", "assist"}

	// Closed list of non-agricultural topic markers.
	offTopicMarkers = []string{
		"weather", "temperature", "forecast", "rain today",
		"cricket", "football", "ipl", "match score", "tournament",
		"movie", "film", "song", "music", "actor", "celebrity",
		"capital of", "president", "prime minister", "election",
		"stock market", "bitcoin", "recipe", "joke", "news today",
	}
)

const (
	greetingWordLimit = 5
	helpWordLimit     = 8
)

func NewResolver(reg *registry.Registry, regions *region.Authority, model IntentModel, modelTimeout time.Duration, defaultTopN int) *Resolver {
	if defaultTopN <= 0 {
		defaultTopN = 10
	}
	if modelTimeout <= 0 {
		modelTimeout = 10 * time.Second
	}
	r := &Resolver{
		reg:          reg,
		regions:      regions,
		model:        model,
		modelTimeout: modelTimeout,
		defaultTopN:  defaultTopN,
	}
	r.rules = []rule{
		{
			name: "greeting",
			applies: func(qc *queryContext) bool {
				return intersects(qc.words, greetingWords) && qc.wordCount <= greetingWordLimit
			},
			resolve: func(qc *queryContext) models.Intent {
				return models.Intent{Mode: models.ModeConversation, ConversationType: models.ConversationGreeting}
			},
		},
		{
			name: "thanks",
			applies: func(qc *queryContext) bool {
				return intersects(qc.words, thanksWords) && qc.wordCount <= greetingWordLimit
			},
			resolve: func(qc *queryContext) models.Intent {
				return models.Intent{Mode: models.ModeConversation, ConversationType: models.ConversationThanks}
			},
		},
		{
			name: "goodbye",
			applies: func(qc *queryContext) bool {
				return intersects(qc.words, goodbyeWords) && qc.wordCount <= greetingWordLimit
			},
			resolve: func(qc *queryContext) models.Intent {
				return models.Intent{Mode: models.ModeConversation, ConversationType: models.ConversationGoodbye}
			},
		},
		{
			name: "help",
			applies: func(qc *queryContext) bool {
				return intersects(qc.words, helpWords) && qc.wordCount <= helpWordLimit
			},
			resolve: func(qc *queryContext) models.Intent {
				return models.Intent{Mode: models.ModeConversation, ConversationType: models.ConversationHelp}
			},
		},
		{
			name:    "off_topic",
			applies: r.isOffTopic,
			resolve: func(qc *queryContext) models.Intent {
				return models.Intent{Mode: models.ModeOffTopic}
			},
		},
		{
			name:    "analytics",
			applies: func(qc *queryContext) bool { return true },
			resolve: r.resolveAnalytics,
		},
	}
	return r
}

// Resolve classifies a query for the given authorized region. The
// external-model path is tried first when configured; the deterministic
// chain is complete on its own and every model failure lands there.
func (r *Resolver) Resolve(ctx context.Context, query, authorizedCode string) models.Intent {
	qc := &queryContext{
		raw:     query,
		q:       strings.ToLower(strings.TrimSpace(query)),
		lgdCode: authorizedCode,
	}
	qc.words = tokenize(qc.q)
	qc.wordCount = len(wordPattern.FindAllString(qc.q, -1))

	if intent, ok := r.tryModel(ctx, qc); ok {
		return intent
	}

	for _, rl := range r.rules {
		if rl.applies(qc) {
			intent := rl.resolve(qc)
			slog.Debug("intent resolved", "rule", rl.name, "mode", intent.Mode)
			return intent
		}
	}
	// Unreachable: the analytics rule always applies.
	return models.Intent{Mode: models.ModeConversation, ConversationType: models.ConversationHelp}
}

func (r *Resolver) tryModel(ctx context.Context, qc *queryContext) (models.Intent, bool) {
	if r.model == nil {
		return models.Intent{}, false
	}

	mctx, cancel := context.WithTimeout(ctx, r.modelTimeout)
	defer cancel()

	raw, err := r.model.ClassifyIntent(mctx, qc.raw)
	if err != nil || raw == nil {
		slog.Debug("model classification unavailable, using rule chain", "error", err)
		return models.Intent{}, false
	}

	switch raw.Mode {
	case models.ModeConversation, models.ModeAnalytics, models.ModeOffTopic:
	default:
		slog.Debug("model classification rejected", "mode", raw.Mode)
		return models.Intent{}, false
	}

	intent := *raw
	if intent.Mode != models.ModeAnalytics {
		if intent.Mode == models.ModeConversation && intent.ConversationType == "" {
			intent.ConversationType = models.ConversationHelp
		}
		return intent, true
	}

	// Model output never bypasses the deterministic pieces that matter:
	// region mentions feed authorization and are always re-detected here.
	r.detectRegions(qc, &intent)
	if _, ok := r.reg.Indicator(intent.Indicator); !ok {
		intent.Indicator = r.detectIndicator(qc.q)
	}
	intent.YearFilter = normalizeYear(intent.YearFilter)
	if intent.YearFilter == "" {
		intent.YearFilter = detectYear(qc.q)
	}
	if intent.TopN <= 0 {
		intent.TopN = detectTopN(qc.q, r.defaultTopN)
	}
	intent.IntentType = classifyIntentType(&intent)
	return intent, true
}

func (r *Resolver) isOffTopic(qc *queryContext) bool {
	marked := false
	for _, marker := range offTopicMarkers {
		if strings.Contains(qc.q, marker) {
			marked = true
			break
		}
	}
	if !marked {
		return false
	}
	if r.hasAgriVocabulary(qc.q) {
		return false
	}
	if _, _, ok := r.regions.DetectState(qc.q); ok {
		return false
	}
	if _, _, ok := r.regions.DetectDistrict(qc.raw, qc.lgdCode); ok {
		return false
	}
	return true
}

func (r *Resolver) hasAgriVocabulary(q string) bool {
	for _, ind := range r.reg.Indicators() {
		for _, kw := range ind.Keywords {
			if matchKeyword(q, kw) {
				return true
			}
		}
	}
	for _, dim := range r.reg.Dimensions() {
		for _, kw := range dim.Keywords {
			if matchKeyword(q, kw) {
				return true
			}
		}
	}
	if len(detectCrops(q)) > 0 || detectSeason(q) != "" {
		return true
	}
	return false
}

func (r *Resolver) resolveAnalytics(qc *queryContext) models.Intent {
	intent := models.Intent{
		Mode:         models.ModeAnalytics,
		Comparison:   detectComparison(qc.q),
		CropFilters:  detectCrops(qc.q),
		SeasonFilter: detectSeason(qc.q),
		YearFilter:   detectYear(qc.q),
		TopN:         detectTopN(qc.q, r.defaultTopN),
	}
	r.detectRegions(qc, &intent)

	// Comparison routing takes priority: its phrases would otherwise
	// look like two indicator domains at once.
	if intent.Comparison == "" {
		if keys := r.detectCompositeIndicators(qc.q); len(keys) > 0 {
			intent.Indicators = keys
			intent.IntentType = models.IntentComposite
			return intent
		}
	}

	intent.Indicator = r.detectIndicator(qc.q)
	intent.Dimension = r.detectDimension(qc.q)
	intent.IntentType = classifyIntentType(&intent)
	return intent
}

// detectRegions fills state and district mentions. District lookup is
// scoped to the caller's authorized state: district names of foreign
// states are unknown territory and stay subject to the state-level guard.
func (r *Resolver) detectRegions(qc *queryContext, intent *models.Intent) {
	if _, name, ok := r.regions.DetectState(qc.q); ok {
		intent.MentionedState = name
	}
	if code, name, ok := r.regions.DetectDistrict(qc.raw, qc.lgdCode); ok {
		intent.MentionedDistrictCode = code
		intent.MentionedDistrictName = name
	}
}

func classifyIntentType(intent *models.Intent) models.IntentType {
	switch {
	case intent.Comparison != "":
		return models.IntentComparison
	case len(intent.Indicators) >= 2:
		return models.IntentComposite
	case intent.Dimension != "":
		return models.IntentDistribution
	default:
		return models.IntentSummary
	}
}

// normalizeYear brings any year token the model produced into the
// canonical "YYYY-YYYY" form; unrecognized forms are discarded.
func normalizeYear(year string) string {
	year = strings.TrimSpace(year)
	if year == "" {
		return ""
	}
	if year == models.YearCurrent {
		return year
	}
	return detectYear(year)
}
