package service

import (
	"testing"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	t.Run("credits xp and records score", func(t *testing.T) {
		db := newTestDB(t)
		user := createUser(t, db, model.RoleCitizen, 1, 0)

		require.NoError(t, Advance(db, user, 7, nil, 80))

		assert.Equal(t, 800, user.XP)
		assert.Equal(t, 1, user.Level)

		var records []model.ScoreRecord
		require.NoError(t, db.Where("user_id = ?", user.ID).Find(&records).Error)
		require.Len(t, records, 1)
		assert.Equal(t, 80, records[0].Score)
		assert.Equal(t, uint(7), records[0].ExamID)
	})

	t.Run("levels up when xp crosses threshold", func(t *testing.T) {
		db := newTestDB(t)
		user := createUser(t, db, model.RoleCitizen, 1, 900)

		require.NoError(t, Advance(db, user, 7, nil, 50))

		assert.Equal(t, 1400, user.XP)
		assert.Equal(t, 2, user.Level)
	})

	t.Run("level never decreases", func(t *testing.T) {
		db := newTestDB(t)
		user := createUser(t, db, model.RoleCitizen, 8, 0)

		require.NoError(t, Advance(db, user, 7, nil, 10))

		assert.Equal(t, 8, user.Level)
	})

	t.Run("rejects out of range scores", func(t *testing.T) {
		db := newTestDB(t)
		user := createUser(t, db, model.RoleCitizen, 1, 0)

		assert.ErrorIs(t, Advance(db, user, 7, nil, 101), util.ErrInvalidScore)
		assert.ErrorIs(t, Advance(db, user, 7, nil, -1), util.ErrInvalidScore)
	})
}

func TestPlace(t *testing.T) {
	t.Run("assigns initial level from score", func(t *testing.T) {
		db := newTestDB(t)
		user := createUser(t, db, model.RoleCitizen, 0, 0)

		require.NoError(t, Place(db, user, 1, 55))

		assert.Equal(t, 5, user.Level)
		assert.Equal(t, 550, user.XP)
		assert.False(t, user.CanRetakePlacement)
	})

	t.Run("retake never lowers the level", func(t *testing.T) {
		db := newTestDB(t)
		user := createUser(t, db, model.RoleCitizen, 6, 0)
		user.CanRetakePlacement = true
		require.NoError(t, db.Save(user).Error)

		require.NoError(t, Place(db, user, 1, 30))

		assert.Equal(t, 6, user.Level)
		assert.False(t, user.CanRetakePlacement)
	})

	t.Run("retake can raise the level", func(t *testing.T) {
		db := newTestDB(t)
		user := createUser(t, db, model.RoleCitizen, 3, 0)

		require.NoError(t, Place(db, user, 1, 90))

		assert.Equal(t, 9, user.Level)
	})
}
