package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

func testBar(symbol string, date time.Time, close float64) *models.PriceBar {
	return &models.PriceBar{
		Symbol: symbol,
		Date:   date,
		Open:   decimal.NewFromFloat(close - 1),
		High:   decimal.NewFromFloat(close + 2),
		Low:    decimal.NewFromFloat(close - 2),
		Close:  decimal.NewFromFloat(close),
		Volume: 100000,
	}
}

func TestPriceBarsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("CreatePriceBar inserts a bar", func(t *testing.T) {
		testDB.TruncateAll(t)

		date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		err := testDB.CreatePriceBar(testBar("AAPL", date, 185.50))
		require.NoError(t, err)

		bars, err := testDB.GetPriceBars("AAPL", date, date)
		require.NoError(t, err)
		require.Len(t, bars, 1)
		assert.True(t, decimal.NewFromFloat(185.50).Equal(bars[0].Close))
	})

	t.Run("duplicate date is not persisted twice", func(t *testing.T) {
		testDB.TruncateAll(t)

		date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		require.NoError(t, testDB.CreatePriceBar(testBar("AAPL", date, 185.50)))
		// second insert for the same (symbol, date) with a different close
		require.NoError(t, testDB.CreatePriceBar(testBar("AAPL", date, 999.99)))

		bars, err := testDB.GetPriceBars("AAPL", date, date)
		require.NoError(t, err)
		require.Len(t, bars, 1)
		// bars are immutable: the original close survives
		assert.True(t, decimal.NewFromFloat(185.50).Equal(bars[0].Close))
	})

	t.Run("CreatePriceBarBatch inserts multiple bars", func(t *testing.T) {
		testDB.TruncateAll(t)

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		var bars []*models.PriceBar
		for i := 0; i < 5; i++ {
			bars = append(bars, testBar("MSFT", start.AddDate(0, 0, i), 400+float64(i)))
		}

		require.NoError(t, testDB.CreatePriceBarBatch(bars))

		count, err := testDB.CountPriceBars("MSFT", start, start.AddDate(0, 0, 10))
		require.NoError(t, err)
		assert.Equal(t, 5, count)
	})

	t.Run("GetPriceBars returns ascending order within range", func(t *testing.T) {
		testDB.TruncateAll(t)

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		// insert out of order
		for _, i := range []int{3, 0, 4, 1, 2} {
			require.NoError(t, testDB.CreatePriceBar(testBar("GOOGL", start.AddDate(0, 0, i), 150+float64(i))))
		}

		bars, err := testDB.GetPriceBars("GOOGL", start.AddDate(0, 0, 1), start.AddDate(0, 0, 3))
		require.NoError(t, err)
		require.Len(t, bars, 3)
		for i := 1; i < len(bars); i++ {
			assert.True(t, bars[i].Date.After(bars[i-1].Date))
		}
	})

	t.Run("DeletePriceBarsOlderThan removes old bars", func(t *testing.T) {
		testDB.TruncateAll(t)

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 4; i++ {
			require.NoError(t, testDB.CreatePriceBar(testBar("AAPL", start.AddDate(0, 0, i), 180)))
		}

		deleted, err := testDB.DeletePriceBarsOlderThan(start.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
	})
}
