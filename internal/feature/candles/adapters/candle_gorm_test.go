package adapters

import (
	"context"
	"testing"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// every pooled connection would otherwise get its own empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&CandleModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// seedCandle creates a test candle in the database for testing.
func seedCandle(t *testing.T, db *gorm.DB, symbol, interval string, at time.Time, closePrice float64) *CandleModel {
	t.Helper()

	candle := &CandleModel{
		Symbol:   symbol,
		Interval: interval,
		Time:     at,
		Open:     100.0,
		High:     110.0,
		Low:      90.0,
		Close:    closePrice,
		Volume:   1000,
	}
	err := db.Create(candle).Error
	require.NoError(t, err, "failed to seed candle")

	return candle
}

func TestNewCandleRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewCandleRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestCandleGorm_UpsertBatch(t *testing.T) {
	t.Parallel()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day := func(offset int, closePrice float64) entity.Candle {
		return entity.Candle{
			Symbol:   "AAPL",
			Interval: "1day",
			Time:     baseTime.AddDate(0, 0, offset),
			Open:     closePrice - 5,
			High:     closePrice + 10,
			Low:      closePrice - 10,
			Close:    closePrice,
			Volume:   1000,
		}
	}

	tests := []struct {
		name         string
		candles      []entity.Candle
		setupFunc    func(t *testing.T, db *gorm.DB)
		validateFunc func(t *testing.T, db *gorm.DB)
	}{
		{
			name:    "success: insert multiple candles",
			candles: []entity.Candle{day(0, 105), day(1, 110)},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&CandleModel{}).Count(&count)
				assert.Equal(t, int64(2), count, "candle count does not match")
			},
		},
		{
			name:    "success: empty slice",
			candles: []entity.Candle{},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&CandleModel{}).Count(&count)
				assert.Equal(t, int64(0), count, "candle count should be 0")
			},
		},
		{
			name:    "success: upsert updates existing candle",
			candles: []entity.Candle{day(0, 210)},
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedCandle(t, db, "AAPL", "1day", baseTime, 105)
			},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&CandleModel{}).Count(&count)
				assert.Equal(t, int64(1), count, "candle count should remain 1 after upsert")

				var candle CandleModel
				db.First(&candle)
				assert.Equal(t, 205.0, candle.Open, "Open should be updated")
				assert.Equal(t, 210.0, candle.Close, "Close should be updated")
			},
		},
		{
			name:    "success: upsert with mixed insert and update",
			candles: []entity.Candle{day(0, 210), day(1, 220)},
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedCandle(t, db, "AAPL", "1day", baseTime, 105)
			},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&CandleModel{}).Count(&count)
				assert.Equal(t, int64(2), count, "candle count should be 2")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewCandleRepository(db)

			if tt.setupFunc != nil {
				tt.setupFunc(t, db)
			}

			err := repo.UpsertBatch(context.Background(), tt.candles)

			require.NoError(t, err)
			tt.validateFunc(t, db)
		})
	}
}

func TestCandleGorm_Find(t *testing.T) {
	t.Parallel()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		symbol       string
		interval     string
		outputsize   int
		setupFunc    func(t *testing.T, db *gorm.DB)
		validateFunc func(t *testing.T, candles []entity.Candle)
	}{
		{
			name:       "success: empty result when no matching candles",
			symbol:     "NOTFOUND",
			interval:   "1day",
			outputsize: 10,
			validateFunc: func(t *testing.T, candles []entity.Candle) {
				assert.Empty(t, candles, "should return empty slice")
			},
		},
		{
			name:       "success: filter by symbol and interval",
			symbol:     "AAPL",
			interval:   "1day",
			outputsize: 10,
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedCandle(t, db, "AAPL", "1day", baseTime, 105)
				seedCandle(t, db, "GOOGL", "1day", baseTime, 105)
				seedCandle(t, db, "AAPL", "1week", baseTime, 105)
			},
			validateFunc: func(t *testing.T, candles []entity.Candle) {
				require.Len(t, candles, 1, "should return only the AAPL daily candle")
				assert.Equal(t, "AAPL", candles[0].Symbol)
				assert.Equal(t, "1day", candles[0].Interval)
			},
		},
		{
			name:       "success: respect outputsize limit",
			symbol:     "AAPL",
			interval:   "1day",
			outputsize: 2,
			setupFunc: func(t *testing.T, db *gorm.DB) {
				for i := 0; i < 5; i++ {
					seedCandle(t, db, "AAPL", "1day", baseTime.AddDate(0, 0, i), 105)
				}
			},
			validateFunc: func(t *testing.T, candles []entity.Candle) {
				assert.Len(t, candles, 2, "should return only 2 candles")
			},
		},
		{
			name:       "success: outputsize 0 returns all",
			symbol:     "AAPL",
			interval:   "1day",
			outputsize: 0,
			setupFunc: func(t *testing.T, db *gorm.DB) {
				for i := 0; i < 5; i++ {
					seedCandle(t, db, "AAPL", "1day", baseTime.AddDate(0, 0, i), 105)
				}
			},
			validateFunc: func(t *testing.T, candles []entity.Candle) {
				assert.Len(t, candles, 5, "should return all candles")
			},
		},
		{
			name:       "success: results ordered by time descending",
			symbol:     "AAPL",
			interval:   "1day",
			outputsize: 10,
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedCandle(t, db, "AAPL", "1day", baseTime, 105)
				seedCandle(t, db, "AAPL", "1day", baseTime.AddDate(0, 0, 2), 105)
				seedCandle(t, db, "AAPL", "1day", baseTime.AddDate(0, 0, 1), 105)
			},
			validateFunc: func(t *testing.T, candles []entity.Candle) {
				require.Len(t, candles, 3, "should return 3 candles")
				assert.True(t, candles[0].Time.After(candles[1].Time), "first should be newer than second")
				assert.True(t, candles[1].Time.After(candles[2].Time), "second should be newer than third")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewCandleRepository(db)

			if tt.setupFunc != nil {
				tt.setupFunc(t, db)
			}

			candles, err := repo.Find(context.Background(), tt.symbol, tt.interval, tt.outputsize)

			require.NoError(t, err)
			tt.validateFunc(t, candles)
		})
	}
}

func TestCandleGorm_FindRange(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewCandleRepository(db)

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// 挿入順をばらばらにして、返却順が時刻昇順であることを確認する
	for _, i := range []int{4, 0, 2, 1, 3, 6, 5} {
		seedCandle(t, db, "AAPL", "1day", baseTime.AddDate(0, 0, i), 100+float64(i))
	}
	seedCandle(t, db, "MSFT", "1day", baseTime.AddDate(0, 0, 2), 999)

	t.Run("inclusive bounds, ascending order", func(t *testing.T) {
		got, err := repo.FindRange(context.Background(), "AAPL", "1day", baseTime.AddDate(0, 0, 1), baseTime.AddDate(0, 0, 4))
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i, c := range got {
			assert.True(t, baseTime.AddDate(0, 0, i+1).Equal(c.Time), "unexpected time at %d: %v", i, c.Time)
			assert.Equal(t, 101+float64(i), c.Close)
		}
	})

	t.Run("range outside data returns empty", func(t *testing.T) {
		got, err := repo.FindRange(context.Background(), "AAPL", "1day", baseTime.AddDate(1, 0, 0), baseTime.AddDate(2, 0, 0))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown symbol returns empty", func(t *testing.T) {
		got, err := repo.FindRange(context.Background(), "NOPE", "1day", baseTime, baseTime.AddDate(0, 0, 10))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestCandleGorm_Find_EntityMapping(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewCandleRepository(db)

	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	candle := &CandleModel{
		Symbol:   "AAPL",
		Interval: "1day",
		Time:     testTime,
		Open:     150.5,
		High:     155.75,
		Low:      149.25,
		Close:    154.0,
		Volume:   5000000,
	}
	err := db.Create(candle).Error
	require.NoError(t, err)

	result, err := repo.Find(context.Background(), "AAPL", "1day", 1)
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, "AAPL", result[0].Symbol, "Symbol does not match")
	assert.Equal(t, "1day", result[0].Interval, "Interval does not match")
	assert.Equal(t, testTime.Unix(), result[0].Time.Unix(), "Time does not match")
	assert.Equal(t, 150.5, result[0].Open, "Open does not match")
	assert.Equal(t, 155.75, result[0].High, "High does not match")
	assert.Equal(t, 149.25, result[0].Low, "Low does not match")
	assert.Equal(t, 154.0, result[0].Close, "Close does not match")
	assert.Equal(t, int64(5000000), result[0].Volume, "Volume does not match")
}
