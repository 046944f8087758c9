package record

import "strconv"

// Entity names a record type. The value doubles as the store table name.
type Entity string

const (
	EntityLog  Entity = "expert_log"
	EntityCamp Entity = "expert_camp"
)

// ExpertLog is a top-level field-activity record with aggregate counts.
type ExpertLog struct {
	LogID         ID     `json:"logid"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	TotalMen      int64  `json:"totalmen"`
	TotalWomen    int64  `json:"totalwomen"`
	TotalSyringe  int64  `json:"totalsyringe"`
	TotalPipe     int64  `json:"totalpipe"`
	TotalSandwich int64  `json:"totalsandwich"`
	TotalSoup     int64  `json:"totalsoup"`
	Notes         string `json:"notes"`
}

// ExpertCamp is a site visit tied to one ExpertLog.
type ExpertCamp struct {
	CampID    ID      `json:"campid"`
	LogID     ID      `json:"logid"`
	Name      string  `json:"name"`
	Date      string  `json:"date"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Men       int64   `json:"men"`
	Women     int64   `json:"women"`
	Syringe   int64   `json:"syringe"`
	Pipe      int64   `json:"pipe"`
	Sandwich  int64   `json:"sandwich"`
	Soup      int64   `json:"soup"`
	Type      string  `json:"type"`
	CampNotes string  `json:"campnotes"`
	Timestamp string  `json:"timestamp"`
}

// Column describes one store column: its lower-case name and the header
// label used by the HTML views.
type Column struct {
	Name  string
	Label string
}

// LogColumns lists expert_log columns in table order. The identifier is first.
var LogColumns = []Column{
	{"logid", "Log ID"},
	{"name", "Name"},
	{"date", "Date"},
	{"totalmen", "Men"},
	{"totalwomen", "Women"},
	{"totalsyringe", "Syringe"},
	{"totalpipe", "Pipe"},
	{"totalsandwich", "Sandwich"},
	{"totalsoup", "Soup"},
	{"notes", "Notes"},
}

// CampColumns lists expert_camp columns in table order. The identifier is
// first, the log reference second.
var CampColumns = []Column{
	{"campid", "Camp ID"},
	{"logid", "Log ID"},
	{"name", "Name"},
	{"date", "Date"},
	{"latitude", "Latitude"},
	{"longitude", "Longitude"},
	{"men", "Men"},
	{"women", "Women"},
	{"syringe", "Syringe"},
	{"pipe", "Pipe"},
	{"sandwich", "Sandwich"},
	{"soup", "Soup"},
	{"type", "Type"},
	{"campnotes", "Notes"},
	{"timestamp", "Timestamp"},
}

// Values returns the column values in LogColumns order, suitable as bind
// parameters.
func (l ExpertLog) Values() []any {
	return []any{
		l.LogID, l.Name, l.Date,
		l.TotalMen, l.TotalWomen, l.TotalSyringe, l.TotalPipe, l.TotalSandwich, l.TotalSoup,
		l.Notes,
	}
}

// Cells returns the column values in LogColumns order as display text.
func (l ExpertLog) Cells() []string {
	return []string{
		l.LogID.String(), l.Name, l.Date,
		itoa(l.TotalMen), itoa(l.TotalWomen), itoa(l.TotalSyringe),
		itoa(l.TotalPipe), itoa(l.TotalSandwich), itoa(l.TotalSoup),
		l.Notes,
	}
}

// Values returns the column values in CampColumns order.
func (c ExpertCamp) Values() []any {
	return []any{
		c.CampID, c.LogID, c.Name, c.Date, c.Latitude, c.Longitude,
		c.Men, c.Women, c.Syringe, c.Pipe, c.Sandwich, c.Soup,
		c.Type, c.CampNotes, c.Timestamp,
	}
}

// Cells returns the column values in CampColumns order as display text.
func (c ExpertCamp) Cells() []string {
	return []string{
		c.CampID.String(), c.LogID.String(), c.Name, c.Date,
		ftoa(c.Latitude), ftoa(c.Longitude),
		itoa(c.Men), itoa(c.Women), itoa(c.Syringe), itoa(c.Pipe), itoa(c.Sandwich), itoa(c.Soup),
		c.Type, c.CampNotes, c.Timestamp,
	}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
