package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUncategorizedParties(t *testing.T) {
	cfg := defaultConfig(t.TempDir())
	cfg.DataDir = "testdata/data"
	l := newLoader(cfg, zerolog.Nop())
	cm := l.categoryMap()

	got := uncategorizedParties(newCategorizer(nil), l.bankTransactions(cm), l.cardTransactions(cm))
	require.Len(t, got, 2)
	assert.Equal(t, "Corner Bodega", got[0].party)
	assert.Equal(t, "25", got[0].spend.String())
	assert.Equal(t, 1, got[0].count)
	assert.Equal(t, `Joe's "Diner"`, got[1].party)
	assert.Equal(t, "12.5", got[1].spend.String())

	t.Run("tiesByName", func(t *testing.T) {
		bank := []Txn{
			bankTxn(day(2024, 1, 1), 10, "Debit", "Zed"),
			bankTxn(day(2024, 1, 2), 10, "Debit", "Abe"),
			bankTxn(day(2024, 1, 3), 99, "Credit", "Refund Co"),
		}
		got := uncategorizedParties(newCategorizer(nil), bank, nil)
		require.Len(t, got, 2)
		assert.Equal(t, "Abe", got[0].party)
		assert.Equal(t, "Zed", got[1].party)
	})
}

func TestKnownCategories(t *testing.T) {
	got := knownCategories(newCategorizer(nil), CategoryMap{"Landlord LLC": "Rent", "Gym Co": "fitness"})
	assert.Contains(t, got, "Rent")
	assert.Contains(t, got, "dining")
	assert.Len(t, got, len(defaultKeywordRules)+1)
}

func TestAppendCategoryMappings(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "Receiver_vs_Category.csv")

	require.NoError(t, appendCategoryMappings(fpath, nil))
	_, err := os.Stat(fpath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, appendCategoryMappings(fpath, map[string]string{"Zed": "dining", "Abe": "travel"}))
	data, err := os.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, "Receiver,Category\nAbe,travel\nZed,dining\n", string(data))

	require.NoError(t, appendCategoryMappings(fpath, map[string]string{"Corner Bodega": "grocery"}))
	data, err = os.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, "Receiver,Category\nAbe,travel\nZed,dining\nCorner Bodega,grocery\n", string(data))

	cfg := defaultConfig(t.TempDir())
	cfg.DataDir = filepath.Dir(fpath)
	cm := newLoader(cfg, zerolog.Nop()).categoryMap()
	assert.Equal(t, "grocery", cm["Corner Bodega"])
	assert.Len(t, cm, 3)
}
