package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{Sensor: "a", Kind: KindMeasurement, Timestamp: at(0), Revision: intPtr(2), Value: map[string]any{"co2": 410.0}},
		{Sensor: "a", Kind: KindLog, Timestamp: at(time.Minute), Severity: "error", Subject: "pump, stalled", Details: "line1\nline2"},
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"timestamp", "sensor", "kind", "revision", "severity", "subject", "details", "value"}, rows[0])
	assert.Equal(t, "2023-11-14T22:13:20Z", rows[1][0])
	assert.Equal(t, "measurement", rows[1][2])
	assert.Equal(t, "2", rows[1][3])
	assert.Equal(t, `{"co2":410}`, rows[1][7])

	assert.Equal(t, "pump, stalled", rows[2][5], "fields with commas are quoted")
	assert.Equal(t, "line1\nline2", rows[2][6])
	assert.Empty(t, rows[2][7])
}

func TestExportCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, nil))
	assert.Equal(t, "timestamp,sensor,kind,revision,severity,subject,details,value\n", buf.String())
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	exportedAt := base.Add(time.Hour)
	require.NoError(t, ExportJSON(&buf, sampleRecords(), exportedAt))

	var doc struct {
		ExportedAt time.Time `json:"exported_at"`
		Count      int       `json:"count"`
		Records    []Record  `json:"records"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.True(t, exportedAt.Equal(doc.ExportedAt))
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, "pump, stalled", doc.Records[1].Subject)
	assert.Equal(t, 410.0, doc.Records[0].Value["co2"])
}

func TestExportJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, nil, base))
	assert.Contains(t, buf.String(), `"records": []`)
}
