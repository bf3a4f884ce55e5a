// Package ingest parses CSV flight manifests at the ingestion boundary.
// Output records are validated, deduplicated on the natural key and sorted,
// matching what the core expects from the CSV collaborator.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jakechorley/flightguard/pkg/core/dates"
)

// Record is one parsed manifest row.
type Record struct {
	Category     string
	FlightType   string
	Date         string
	Time         string
	CarrierCode  string
	CarrierName  string
	DocCode      string
	FlightNumber string
}

// Key is the composite natural key used for deduplication and for the
// deterministic ranking input: date|time|doc code|flight number|category,
// lower-cased with components trimmed.
func (r Record) Key() string {
	parts := []string{r.Date, r.Time, r.DocCode, r.FlightNumber, r.Category}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// expected CSV header, case-insensitive
var header = []string{
	"category", "type", "date", "time",
	"carrier_code", "carrier_name", "doc_code", "flight_number",
}

// ParseManifest reads a CSV manifest. The first row must be the expected
// header. Rows with a blank category or flight number, or a date that does
// not normalize, are rejected with the row number. Duplicate natural keys
// keep the first occurrence. Output is sorted by (date, time, flight
// number) so imports are stable across re-uploads.
func ParseManifest(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}
	if err := checkHeader(head); err != nil {
		return nil, err
	}

	var records []Record
	seen := make(map[string]bool)
	row := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		rec := Record{
			Category:     strings.TrimSpace(fields[0]),
			FlightType:   strings.TrimSpace(fields[1]),
			Date:         strings.TrimSpace(fields[2]),
			Time:         strings.TrimSpace(fields[3]),
			CarrierCode:  strings.TrimSpace(fields[4]),
			CarrierName:  strings.TrimSpace(fields[5]),
			DocCode:      strings.TrimSpace(fields[6]),
			FlightNumber: strings.TrimSpace(fields[7]),
		}

		if rec.Category == "" {
			return nil, fmt.Errorf("row %d: missing category", row)
		}
		if rec.FlightNumber == "" {
			return nil, fmt.Errorf("row %d: missing flight number", row)
		}
		if d, err := dates.Normalize(rec.Date); err != nil || d.IsZero() {
			return nil, fmt.Errorf("row %d: invalid date %q", row, rec.Date)
		}

		key := rec.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.FlightNumber < b.FlightNumber
	})

	return records, nil
}

func checkHeader(head []string) error {
	if len(head) != len(header) {
		return fmt.Errorf("manifest header has %d columns, want %d", len(head), len(header))
	}
	for i, want := range header {
		got := strings.ToLower(strings.TrimSpace(head[i]))
		if got != want {
			return fmt.Errorf("manifest column %d is %q, want %q", i+1, head[i], want)
		}
	}
	return nil
}
