package repository

import (
	"context"
	"testing"

	"analytics-service/internal/models"
	"analytics-service/internal/registry"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// LATE-CONNECTION HANDLING
// ============================================================================

func TestAnalyticsRepository_WithoutConnectionReturnsError(t *testing.T) {
	repo := NewAnalyticsRepository(nil)
	ctx := context.Background()

	plan := models.QueryPlan{
		Kind: models.PlanAggregate, Table: registry.TableCropArea,
		ValueColumn: "crop_area_approved",
		Filters: []models.Filter{
			{Column: registry.ColumnState, Op: models.FilterEq, Values: []string{"27"}},
		},
	}

	assert.NotPanics(t, func() {
		_, err := repo.Execute(ctx, plan)
		assert.ErrorIs(t, err, errDatabaseUnavailable)

		_, err = repo.Columns(ctx, registry.TableCropArea)
		assert.ErrorIs(t, err, errDatabaseUnavailable)

		_, err = repo.LatestYear(ctx, "27")
		assert.ErrorIs(t, err, errDatabaseUnavailable)

		assert.ErrorIs(t, repo.Ping(ctx), errDatabaseUnavailable)
	}, "a missing connection must surface as an error, never a panic")
}

func TestAnalyticsRepository_SetDBInstallsConnection(t *testing.T) {
	repo := NewAnalyticsRepository(nil)

	_, err := repo.conn()
	assert.ErrorIs(t, err, errDatabaseUnavailable)

	repo.SetDB(&sqlx.DB{})

	db, err := repo.conn()
	assert.NoError(t, err)
	assert.NotNil(t, db)
}
