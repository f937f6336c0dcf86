package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnescaper(t *testing.T) {
	t.Run("escapedQuoteInsideQuotes", func(t *testing.T) {
		in := `a,"say \"hi\"",b` + "\n"
		out, err := io.ReadAll(newUnescaper(strings.NewReader(in)))
		require.NoError(t, err)
		assert.Equal(t, `a,"say ""hi""",b`+"\n", string(out))
	})

	t.Run("backslashOutsideQuotesUntouched", func(t *testing.T) {
		in := `C:\data,"x\ny"`
		out, err := io.ReadAll(newUnescaper(strings.NewReader(in)))
		require.NoError(t, err)
		assert.Equal(t, "C:\\data,\"x\ny\"", string(out))
	})

	t.Run("smallReads", func(t *testing.T) {
		u := newUnescaper(strings.NewReader(`"\"q\""`))
		var got []byte
		buf := make([]byte, 1)
		for {
			n, err := u.Read(buf)
			got = append(got, buf[:n]...)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
		}
		assert.Equal(t, `"""q"""`, string(got))
	})
}

func TestReadTable(t *testing.T) {
	dir := t.TempDir()

	t.Run("headerIndex", func(t *testing.T) {
		fpath := writeFile(t, dir, "t.csv", "\ufeffDate, Amount ($) ,Merchant\n"+
			`2024-01-02,12.50,"Joe's \"Diner\""`+"\n")
		tbl, err := readTable(fpath)
		require.NoError(t, err)
		require.Len(t, tbl.rows, 1)
		assert.True(t, tbl.has("Date"))
		assert.True(t, tbl.has("Amount ($)"))
		col, ok := tbl.column("Amount (USD)", "Amount ($)")
		assert.True(t, ok)
		assert.Equal(t, "Amount ($)", col)
		assert.Equal(t, `Joe's "Diner"`, tbl.get(tbl.rows[0], "Merchant"))
		assert.Equal(t, "", tbl.get(tbl.rows[0], "Missing"))
	})

	t.Run("shortRows", func(t *testing.T) {
		fpath := writeFile(t, dir, "short.csv", "a,b,c\n1\n")
		tbl, err := readTable(fpath)
		require.NoError(t, err)
		assert.Equal(t, "1", tbl.get(tbl.rows[0], "a"))
		assert.Equal(t, "", tbl.get(tbl.rows[0], "c"))
	})

	t.Run("missingFile", func(t *testing.T) {
		_, err := readTable(dir + "/nope.csv")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := readTable(writeFile(t, dir, "empty.csv", ""))
		assert.Error(t, err)
	})

	t.Run("records", func(t *testing.T) {
		fpath := writeFile(t, dir, "loans.csv", "Loan Type,Interest Rate (%)\nHome,6.5\nAuto,n/a\n")
		tbl, err := readTable(fpath)
		require.NoError(t, err)
		recs := tbl.records("Interest Rate (%)")
		require.Len(t, recs, 2)
		assert.Equal(t, "Home", recs[0]["Loan Type"])
		assert.Equal(t, 6.5, recs[0]["Interest Rate (%)"])
		assert.Nil(t, recs[1]["Interest Rate (%)"])
	})
}
