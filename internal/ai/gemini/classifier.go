package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"analytics-service/internal/models"
)

// intentPayload is the JSON contract the classification prompt demands.
// Everything in it is untrusted until validated by the resolver.
type intentPayload struct {
	Mode             string   `json:"mode"`
	ConversationType string   `json:"conversation_type"`
	Indicator        string   `json:"indicator"`
	Dimension        string   `json:"dimension"`
	CropFilters      []string `json:"crop_filters"`
	SeasonFilter     string   `json:"season_filter"`
	YearFilter       string   `json:"year_filter"`
	Comparison       string   `json:"comparison"`
	TopN             int      `json:"top_n"`
}

// Classifier implements the model-assisted classification path on top of
// the client selector.
type Classifier struct {
	selector *ClientSelector
}

func NewClassifier(selector *ClientSelector) *Classifier {
	return &Classifier{selector: selector}
}

// ClassifyIntent asks the model for a structured intent. The payload is
// accepted only when it parses as JSON and carries a mode field; any
// other outcome is an error the caller recovers from locally.
func (c *Classifier) ClassifyIntent(ctx context.Context, query string) (*models.Intent, error) {
	prompt := fmt.Sprintf(classificationPromptTemplate, query)

	var raw string
	err := c.selector.TryAllClients(func(client *Client, _ int) error {
		text, err := client.GenerateText(ctx, prompt)
		if err != nil {
			return err
		}
		raw = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(stripMarkdownJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("classification payload is not valid JSON: %w", err)
	}
	if payload.Mode == "" {
		return nil, fmt.Errorf("classification payload has no mode field")
	}

	return &models.Intent{
		Mode:             models.Mode(payload.Mode),
		ConversationType: models.ConversationType(payload.ConversationType),
		Indicator:        payload.Indicator,
		Dimension:        payload.Dimension,
		CropFilters:      payload.CropFilters,
		SeasonFilter:     payload.SeasonFilter,
		YearFilter:       payload.YearFilter,
		Comparison:       payload.Comparison,
		TopN:             payload.TopN,
	}, nil
}

// TextGenerator adapts the selector to the narration/conversation text
// interface.
type TextGenerator struct {
	selector *ClientSelector
}

func NewTextGenerator(selector *ClientSelector) *TextGenerator {
	return &TextGenerator{selector: selector}
}

func (g *TextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	var out string
	err := g.selector.TryAllClients(func(client *Client, _ int) error {
		text, err := client.GenerateText(ctx, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
