package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expertlog/internal/record"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestLogs(t *testing.T) {
	logs := []record.ExpertLog{
		{
			LogID:        record.SerialID(2),
			Name:         `<script>alert("x")</script>`,
			Date:         "2024-01-02",
			TotalMen:     1,
			TotalSyringe: 4,
			TotalPipe:    2,
			TotalSoup:    1,
			Notes:        "Tom & Jerry's",
		},
		{
			LogID:         record.SerialID(1),
			Name:          "Team A",
			Date:          "2024-01-01",
			TotalMen:      3,
			TotalWomen:    2,
			TotalSyringe:  10,
			TotalSandwich: 5,
			TotalSoup:     4,
			Notes:         "ok",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Logs(&buf, logs))
	newGoldie(t).Assert(t, "logs", buf.Bytes())
}

func TestLogs_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Logs(&buf, nil))
	newGoldie(t).Assert(t, "logs_empty", buf.Bytes())
}

func TestCamps(t *testing.T) {
	camps := []record.ExpertCamp{
		{
			CampID:    record.SerialID(7),
			LogID:     record.SerialID(1),
			Name:      "North",
			Date:      "2024-01-02",
			Latitude:  -1.2921,
			Longitude: 36.8219,
			Men:       1,
			Women:     2,
			Syringe:   3,
			Sandwich:  4,
			Soup:      5,
			Type:      "mobile",
			CampNotes: "<b>bold</b>",
			Timestamp: "2024-01-02T10:00:00Z",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Camps(&buf, camps))
	newGoldie(t).Assert(t, "camps", buf.Bytes())
}

func TestLogs_EscapesEveryCell(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Logs(&buf, []record.ExpertLog{{
		LogID: record.TokenID("<id>"),
		Name:  "<i>n</i>",
		Date:  "<d>",
		Notes: "<img src=x onerror=alert(1)>",
	}}))
	out := buf.String()
	assert.NotContains(t, out, "<i>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<id>")
	assert.Contains(t, out, "&lt;img src=x onerror=alert(1)&gt;")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestCamps_WriteError(t *testing.T) {
	assert.Error(t, Camps(failingWriter{}, nil))
}
