package nlp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"analytics-service/internal/models"
)

var conversationFallbacks = map[models.ConversationType]string{
	models.ConversationGreeting: "Hello! I'm your AgriStack Analytics Assistant. Ask me about crop data, survey progress, farmer statistics, or land usage.",
	models.ConversationThanks:   "You're welcome! Ask me anytime about crop areas, survey progress, or farmer statistics.",
	models.ConversationGoodbye:  "Goodbye! Come back whenever you need agricultural analytics for your region.",
	models.ConversationHelp:     "I can help with: crop area analysis, survey progress, farmer counts, irrigation data, district comparisons, and seasonal trends.",
}

// SuggestedQueries is returned instead of a data plan when a question
// falls outside the agricultural domain.
var SuggestedQueries = []string{
	"district-wise crop area",
	"total registered farmers",
	"survey progress this year",
	"irrigated vs unirrigated area",
	"top 5 crops by approved area",
	"year-wise surveyed area trend",
}

const (
	greetingPrompt = `User said: %q
You are AgriStack MIS Assistant. Generate a warm greeting (2 sentences).
Mention: crop data, farmer statistics, survey progress, district analysis.
Be professional and helpful.`

	helpPrompt = `User asked: %q
You are AgriStack MIS Assistant. Provide helpful guidance (2-3 sentences).
Suggest queries about: survey status, farmer registration, crop area, irrigation, district comparisons.`
)

// Conversationalist produces greeting/help style replies, model-first
// with fixed fallbacks.
type Conversationalist struct {
	model   TextModel
	timeout time.Duration
}

func NewConversationalist(model TextModel, timeout time.Duration) *Conversationalist {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Conversationalist{model: model, timeout: timeout}
}

func (c *Conversationalist) Reply(ctx context.Context, convType models.ConversationType, query string) string {
	if c.model != nil {
		prompt := helpPrompt
		if convType == models.ConversationGreeting {
			prompt = greetingPrompt
		}
		mctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		text, err := c.model.GenerateText(mctx, fmt.Sprintf(prompt, query))
		if err == nil {
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
		} else {
			slog.Debug("model conversation reply unavailable, using fallback", "error", err)
		}
	}

	if reply, ok := conversationFallbacks[convType]; ok {
		return reply
	}
	return conversationFallbacks[models.ConversationHelp]
}

// OffTopicReply names the domain boundary and offers example queries.
func OffTopicReply() string {
	return "I can only answer questions about agricultural data: crop areas, surveys, farmers, and land usage. Try one of these: " +
		strings.Join(SuggestedQueries, "; ") + "."
}
