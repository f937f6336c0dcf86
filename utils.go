package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func checkf(err error, format string, args ...any) {
	if err != nil {
		log.Printf(format, args...)
		log.Println()
		log.Fatalf("%+v", errors.WithStack(err))
	}
}

var errc = color.New(color.BgRed, color.FgWhite).PrintfFunc()

func oerr(msg string) {
	errc("\tERROR: " + msg + " ")
	fmt.Println()
	fmt.Println("Flags available:")
	flag.PrintDefaults()
	fmt.Println()
}

func singleCharMode() {
	// disable input buffering
	exec.Command("stty", "-F", "/dev/tty", "cbreak", "min", "1").Run()
	// do not display entered characters on the screen
	exec.Command("stty", "-F", "/dev/tty", "-echo").Run()
}

func saneMode() {
	exec.Command("stty", "-F", "/dev/tty", "sane").Run()
}

func clear() {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	cmd.Run()
	fmt.Println()
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"02-01-2006",
}

// parseDate tries every known layout and reports whether one matched.
func parseDate(col string) (time.Time, bool) {
	col = strings.TrimSpace(col)
	for _, layout := range dateLayouts {
		if tm, err := time.Parse(layout, col); err == nil {
			return tm, true
		}
	}
	return time.Time{}, false
}

func cleanNumber(col string) string {
	col = strings.TrimSpace(col)
	col = strings.ReplaceAll(col, ",", "")
	col = strings.TrimPrefix(col, "$")
	col = strings.TrimSuffix(col, "%")
	if strings.HasPrefix(col, "-$") {
		col = "-" + col[2:]
	}
	return col
}

func parseAmount(col string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(cleanNumber(col))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseNumber treats NaN and infinities as missing, they cannot be written
// out as JSON.
func parseNumber(col string) (float64, bool) {
	f, err := strconv.ParseFloat(cleanNumber(col), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func writeJSON(fpath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "while encoding %s", fpath)
	}
	return errors.Wrapf(os.WriteFile(fpath, data, 0o644), "while writing %s", fpath)
}

func readJSON(fpath string, v any) error {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return errors.Wrapf(err, "while reading %s", fpath)
	}
	return errors.Wrapf(json.Unmarshal(data, v), "while decoding %s", fpath)
}
