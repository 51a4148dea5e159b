package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"analytics-service/internal/authz"
	"analytics-service/internal/models"
	"analytics-service/internal/nlp"
	"analytics-service/internal/planner"
	"analytics-service/internal/region"
	"analytics-service/internal/registry"
	"analytics-service/internal/repository"

	"github.com/google/uuid"
)

// AnalyticsService runs the full chat pipeline: intent resolution, the
// jurisdiction guard, planning, execution and narration. Every query gets
// a response; pipeline problems surface as errors only when the data
// source itself fails.
type AnalyticsService struct {
	reg      *registry.Registry
	regions  *region.Authority
	resolver *nlp.Resolver
	guard    *authz.Guard
	planner  *planner.Planner
	narrator *nlp.Narrator
	conv     *nlp.Conversationalist
	backend  repository.Backend

	defaultLGDCode string
}

func NewAnalyticsService(
	reg *registry.Registry,
	regions *region.Authority,
	resolver *nlp.Resolver,
	guard *authz.Guard,
	plnr *planner.Planner,
	narrator *nlp.Narrator,
	conv *nlp.Conversationalist,
	backend repository.Backend,
	defaultLGDCode string,
) *AnalyticsService {
	return &AnalyticsService{
		reg:            reg,
		regions:        regions,
		resolver:       resolver,
		guard:          guard,
		planner:        plnr,
		narrator:       narrator,
		conv:           conv,
		backend:        backend,
		defaultLGDCode: defaultLGDCode,
	}
}

func (s *AnalyticsService) ProcessChat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	lgdCode := req.LGDCode
	if lgdCode == "" {
		lgdCode = s.defaultLGDCode
	}

	meta := models.ChatMetadata{
		RequestID:  uuid.New().String(),
		State:      s.regions.StateName(lgdCode),
		LGDCode:    lgdCode,
		DataSource: s.backend.Name(),
		Timestamp:  time.Now().UTC(),
	}

	intent := s.resolver.Resolve(ctx, req.Query, lgdCode)
	meta.Mode = intent.Mode
	meta.IntentType = intent.IntentType

	switch intent.Mode {
	case models.ModeConversation:
		return s.conversationResponse(ctx, intent, req.Query, meta), nil
	case models.ModeOffTopic:
		return s.offTopicResponse(meta), nil
	}

	return s.analyticsResponse(ctx, intent, req.Query, lgdCode, meta)
}

func (s *AnalyticsService) conversationResponse(ctx context.Context, intent models.Intent, query string, meta models.ChatMetadata) *models.ChatResponse {
	reply := s.conv.Reply(ctx, intent.ConversationType, query)
	return &models.ChatResponse{
		Title:     "AgriStack Analytics Assistant",
		Chart:     messageChart(),
		Narration: reply,
		Metadata:  meta,
	}
}

func (s *AnalyticsService) offTopicResponse(meta models.ChatMetadata) *models.ChatResponse {
	return &models.ChatResponse{
		Title:     "Outside Coverage",
		Chart:     messageChart(),
		Narration: nlp.OffTopicReply(),
		Metadata:  meta,
	}
}

func (s *AnalyticsService) analyticsResponse(ctx context.Context, intent models.Intent, query, lgdCode string, meta models.ChatMetadata) (*models.ChatResponse, error) {
	decision := s.guard.Authorize(lgdCode, intent.MentionedState)
	if !decision.Allowed {
		slog.Info("cross-region request denied",
			"request_id", meta.RequestID,
			"authorized_lgd", decision.AuthorizedCode,
			"mentioned_lgd", decision.MentionedCode)
		meta.Denied = true
		return &models.ChatResponse{
			Title:     "Access Restricted",
			Chart:     messageChart(),
			Narration: decision.Reason,
			Metadata:  meta,
		}, nil
	}

	// A time-relative year is anchored to the region's own newest data,
	// never to the wall clock.
	if intent.YearFilter == models.YearCurrent {
		latest, err := s.backend.LatestYear(ctx, lgdCode)
		if err != nil {
			return nil, fmt.Errorf("resolve current year: %w", err)
		}
		intent.YearFilter = latest
	}

	table := s.planTable(intent)
	columns, err := s.backend.Columns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("inspect source table: %w", err)
	}

	plan := s.planner.Build(intent, lgdCode, columns)
	result, err := s.backend.Execute(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("execute analytics plan: %w", err)
	}

	regionName := decision.AuthorizedName
	if intent.MentionedDistrictName != "" {
		regionName = intent.MentionedDistrictName + ", " + regionName
	}
	narration := s.narrator.Narrate(ctx, result, regionName, query)

	meta.Indicator = intent.Indicator
	meta.Dimension = intent.Dimension
	meta.Filters = intentFilters(intent)
	meta.Plan = &plan

	return &models.ChatResponse{
		Title: result.Title,
		Chart: models.ChartData{
			Type:   result.ChartType,
			Labels: result.Labels,
			Values: result.Values,
			Unit:   result.Unit,
		},
		Narration: narration,
		Items:     result.Items,
		Metadata:  meta,
	}, nil
}

// planTable picks the source table whose columns the planner needs. Only
// aggregate plans consult the column set; comparison and composite plans
// carry their tables per leg.
func (s *AnalyticsService) planTable(intent models.Intent) string {
	ind, ok := s.reg.Indicator(intent.Indicator)
	if !ok {
		ind = s.reg.DefaultIndicator()
	}
	return ind.Table
}

func intentFilters(intent models.Intent) map[string]string {
	filters := make(map[string]string)
	if len(intent.CropFilters) > 0 {
		filters["crops"] = fmt.Sprint(intent.CropFilters)
	}
	if intent.SeasonFilter != "" {
		filters["season"] = intent.SeasonFilter
	}
	if intent.YearFilter != "" {
		filters["year"] = intent.YearFilter
	}
	if intent.MentionedDistrictName != "" {
		filters["district"] = intent.MentionedDistrictName
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}

func messageChart() models.ChartData {
	return models.ChartData{Type: models.ChartMessage, Labels: []string{}, Values: []float64{}}
}
