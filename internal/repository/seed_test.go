package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/model"
	"task-planner/internal/repository"
	"task-planner/internal/testutil"
)

func TestLoadDefaults(t *testing.T) {
	raw := []byte(`
statuses:
  - {name: Open, code: open, order: 1, default: true}
  - {name: Done, code: done, order: 2, final: true}
duration:
  - {name: Fortnight, unit: w, value: 2}
  - {name: Legacy, unit: hours, value: 5}
`)
	items, err := repository.LoadDefaults(raw)
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, model.KindStatus, items[0].Kind)
	assert.True(t, items[0].IsDefault)
	assert.True(t, items[1].IsFinal)
	assert.True(t, items[1].IsActive)
	assert.Equal(t, model.UnitWeeks, items[2].Unit)
	assert.Equal(t, model.UnitDays, items[3].Unit, "unknown units fall back to days")
}

func TestLoadDefaults_Rejects(t *testing.T) {
	_, err := repository.LoadDefaults([]byte("moods:\n  - {name: Happy}\n"))
	assert.Error(t, err)

	_, err = repository.LoadDefaults([]byte("status:\n  - {code: nameless}\n"))
	assert.Error(t, err)

	_, err = repository.LoadDefaults([]byte("status: [unclosed"))
	assert.Error(t, err)
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	db := testutil.NewDB(t) // seeds once
	ctx := context.Background()

	inserted, err := repository.SeedDefaults(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	vocab := repository.NewVocabularyRepository(db)
	statuses, err := vocab.ListDefaults(ctx, model.KindStatus)
	require.NoError(t, err)
	require.Len(t, statuses, 5)
	assert.Equal(t, "pending", statuses[0].Code)
	assert.True(t, statuses[3].IsFinal)
	assert.True(t, statuses[4].IsFinal)

	durations, err := vocab.ListDefaults(ctx, model.KindDuration)
	require.NoError(t, err)
	require.Len(t, durations, 8)
	assert.Equal(t, model.UnitYears, durations[7].Unit)
}
