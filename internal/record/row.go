package record

import (
	"fmt"
	"strconv"
	"strings"
)

// LogFromRow converts a store row keyed by column name into an ExpertLog.
// Column names are matched case-insensitively.
func LogFromRow(row map[string]any) (ExpertLog, error) {
	r := rowReader{row: foldKeys(row)}
	l := ExpertLog{
		LogID:         r.id("logid"),
		Name:          r.text("name"),
		Date:          r.text("date"),
		TotalMen:      r.int("totalmen"),
		TotalWomen:    r.int("totalwomen"),
		TotalSyringe:  r.int("totalsyringe"),
		TotalPipe:     r.int("totalpipe"),
		TotalSandwich: r.int("totalsandwich"),
		TotalSoup:     r.int("totalsoup"),
		Notes:         r.text("notes"),
	}
	if r.err != nil {
		return ExpertLog{}, fmt.Errorf("expert_log row: %w", r.err)
	}
	return l, nil
}

// CampFromRow converts a store row keyed by column name into an ExpertCamp.
func CampFromRow(row map[string]any) (ExpertCamp, error) {
	r := rowReader{row: foldKeys(row)}
	c := ExpertCamp{
		CampID:    r.id("campid"),
		LogID:     r.id("logid"),
		Name:      r.text("name"),
		Date:      r.text("date"),
		Latitude:  r.float("latitude"),
		Longitude: r.float("longitude"),
		Men:       r.int("men"),
		Women:     r.int("women"),
		Syringe:   r.int("syringe"),
		Pipe:      r.int("pipe"),
		Sandwich:  r.int("sandwich"),
		Soup:      r.int("soup"),
		Type:      r.text("type"),
		CampNotes: r.text("campnotes"),
		Timestamp: r.text("timestamp"),
	}
	if r.err != nil {
		return ExpertCamp{}, fmt.Errorf("expert_camp row: %w", r.err)
	}
	return c, nil
}

func foldKeys(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[strings.ToLower(k)] = v
	}
	return out
}

type rowReader struct {
	row map[string]any
	err error
}

func (r *rowReader) fail(col string, v any) {
	if r.err == nil {
		r.err = fmt.Errorf("column %s: unexpected %T", col, v)
	}
}

func (r *rowReader) id(col string) ID {
	var id ID
	if err := id.Scan(r.row[col]); err != nil {
		r.fail(col, r.row[col])
	}
	return id
}

func (r *rowReader) text(col string) string {
	switch v := r.row[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		r.fail(col, v)
		return ""
	}
}

func (r *rowReader) int(col string) int64 {
	switch v := r.row[col].(type) {
	case nil:
		return 0
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.fail(col, v)
		}
		return n
	default:
		r.fail(col, v)
		return 0
	}
}

func (r *rowReader) float(col string) float64 {
	switch v := r.row[col].(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		r.fail(col, v)
		return 0
	}
}
