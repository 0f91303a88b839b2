package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseCSV reads daily bars from a CSV stream. The first row must be a
// header; recognized columns are date, open, high, low, close, volume
// (case-insensitive, any order). Only date and close are required.
// Rows that fail to parse are skipped and reported in the returned
// warnings rather than aborting the whole import.
func ParseCSV(r io.Reader) ([]DailyBar, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	dateIdx, ok := cols["date"]
	if !ok {
		return nil, nil, fmt.Errorf("CSV is missing required column %q", "date")
	}
	closeIdx, ok := cols["close"]
	if !ok {
		return nil, nil, fmt.Errorf("CSV is missing required column %q", "close")
	}

	var (
		bars     []DailyBar
		warnings []string
		line     = 1
	)

	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		date, err := parseCSVDate(record[dateIdx])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		closeP, err := strconv.ParseFloat(strings.TrimSpace(record[closeIdx]), 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid close %q", line, record[closeIdx]))
			continue
		}

		bar := DailyBar{Date: date, Close: closeP}
		bar.Open = optionalFloat(record, cols, "open")
		bar.High = optionalFloat(record, cols, "high")
		bar.Low = optionalFloat(record, cols, "low")
		bar.Volume = optionalInt(record, cols, "volume")

		bars = append(bars, bar)
	}

	// Imports arrive in arbitrary order; the store and the indicator
	// pipeline both expect chronological bars.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return bars, warnings, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateFormat, "2006/01/02", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func optionalFloat(record []string, cols map[string]int, name string) *float64 {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil {
		return nil
	}
	return &v
}

func optionalInt(record []string, cols map[string]int, name string) *int64 {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(record[idx]), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
