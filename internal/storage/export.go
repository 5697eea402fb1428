package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportCSV writes records as CSV. Measurement values are encoded as JSON
// objects in the value column.
func ExportCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"timestamp", "sensor", "kind", "revision", "severity", "subject", "details", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, record := range records {
		revision := ""
		if record.Revision != nil {
			revision = strconv.Itoa(*record.Revision)
		}

		value := ""
		if record.Value != nil {
			b, err := json.Marshal(record.Value)
			if err != nil {
				return fmt.Errorf("marshal value: %w", err)
			}
			value = string(b)
		}

		row := []string{
			record.Time().Format(time.RFC3339Nano),
			record.Sensor,
			string(record.Kind),
			revision,
			record.Severity,
			record.Subject,
			record.Details,
			value,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportJSON writes records as an indented JSON document.
func ExportJSON(w io.Writer, records []Record, exportedAt time.Time) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if records == nil {
		records = []Record{}
	}

	export := struct {
		ExportedAt time.Time `json:"exported_at"`
		Count      int       `json:"count"`
		Records    []Record  `json:"records"`
	}{
		ExportedAt: exportedAt.UTC(),
		Count:      len(records),
		Records:    records,
	}

	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}
