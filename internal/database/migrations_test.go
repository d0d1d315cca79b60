package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("all tables exist", func(t *testing.T) {
		expectedTables := []string{
			"price_bars",
			"indicator_points",
			"news_articles",
			"sentiment_records",
			"reports",
		}

		for _, tableName := range expectedTables {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("price_bars table has correct columns", func(t *testing.T) {
		expectedColumns := []string{
			"id", "symbol", "date", "open", "high", "low", "close",
			"volume", "created_at",
		}

		for _, colName := range expectedColumns {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.columns
					WHERE table_name = 'price_bars' AND column_name = $1
				)
			`, colName).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "column %s should exist in price_bars table", colName)
		}
	})

	t.Run("indicator_points table has correct columns", func(t *testing.T) {
		expectedColumns := []string{
			"id", "symbol", "date", "indicator_kind", "parameters",
			"value", "signal_value", "histogram", "upper_band", "lower_band",
			"created_at",
		}

		for _, colName := range expectedColumns {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.columns
					WHERE table_name = 'indicator_points' AND column_name = $1
				)
			`, colName).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "column %s should exist in indicator_points table", colName)
		}
	})

	t.Run("indexes exist", func(t *testing.T) {
		expectedIndexes := []struct {
			table string
			index string
		}{
			{"price_bars", "idx_price_bars_symbol_date"},
			{"indicator_points", "idx_indicator_points_lookup"},
			{"news_articles", "idx_news_articles_published_at"},
		}

		for _, idx := range expectedIndexes {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM pg_indexes
					WHERE tablename = $1 AND indexname = $2
				)
			`, idx.table, idx.index).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "index %s should exist on table %s", idx.index, idx.table)
		}
	})

	t.Run("unique constraints exist", func(t *testing.T) {
		// price_bars (symbol, date) unique
		var priceUnique bool
		err := testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (
				SELECT FROM pg_constraint c
				JOIN pg_class t ON c.conrelid = t.oid
				WHERE t.relname = 'price_bars'
				AND c.contype = 'u'
			)
		`).Scan(&priceUnique)
		require.NoError(t, err)
		assert.True(t, priceUnique, "price_bars should have unique constraint on (symbol, date)")

		// indicator_points composite uniqueness key
		var indicatorUnique bool
		err = testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (
				SELECT FROM pg_constraint c
				JOIN pg_class t ON c.conrelid = t.oid
				WHERE t.relname = 'indicator_points'
				AND c.contype = 'u'
			)
		`).Scan(&indicatorUnique)
		require.NoError(t, err)
		assert.True(t, indicatorUnique, "indicator_points should have unique constraint on (symbol, date, kind, parameters)")

		// sentiment_records.news_id unique (one record per article)
		var sentimentUnique bool
		err = testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (
				SELECT FROM pg_constraint c
				JOIN pg_class t ON c.conrelid = t.oid
				WHERE t.relname = 'sentiment_records'
				AND c.contype = 'u'
			)
		`).Scan(&sentimentUnique)
		require.NoError(t, err)
		assert.True(t, sentimentUnique, "sentiment_records.news_id should have unique constraint")
	})

	t.Run("foreign keys exist", func(t *testing.T) {
		// sentiment_records references news_articles
		var sentimentFK bool
		err := testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (
				SELECT FROM pg_constraint c
				JOIN pg_class t ON c.conrelid = t.oid
				WHERE t.relname = 'sentiment_records'
				AND c.contype = 'f'
			)
		`).Scan(&sentimentFK)
		require.NoError(t, err)
		assert.True(t, sentimentFK, "sentiment_records should have foreign key to news_articles")
	})
}
