package record

import (
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
	"golang.org/x/text/cases"
)

// DecodeOptions tells the decoder how identifier fields are typed.
type DecodeOptions struct {
	LogIDs  IDKind
	CampIDs IDKind
}

// fields is a JSON object with case-folded keys. When a body carries the
// same field under two casings, the last one wins.
type fields map[string]*fastjson.Value

func parseObject(body []byte, fold cases.Caser) (fields, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, &ValidationError{Reason: "malformed JSON: " + err.Error()}
	}
	o, err := v.Object()
	if err != nil {
		return nil, &ValidationError{Reason: "body must be a JSON object"}
	}
	f := make(fields, o.Len())
	o.Visit(func(key []byte, v *fastjson.Value) {
		f[fold.String(string(key))] = v
	})
	return f, nil
}

// DecodeLog parses an ExpertLog request body.
func DecodeLog(body []byte, opts DecodeOptions) (ExpertLog, error) {
	fold := cases.Fold()
	f, err := parseObject(body, fold)
	if err != nil {
		return ExpertLog{}, err
	}

	var l ExpertLog
	d := decoder{f: f, fold: fold}
	l.LogID = d.id("logId", opts.LogIDs)
	l.Name = d.text("name", true)
	l.Date = d.text("date", true)
	l.TotalMen = d.count("totalMen")
	l.TotalWomen = d.count("totalWomen")
	l.TotalSyringe = d.count("totalSyringe")
	l.TotalPipe = d.count("totalPipe")
	l.TotalSandwich = d.count("totalSandwich")
	l.TotalSoup = d.count("totalSoup")
	l.Notes = d.text("notes", false)
	if d.err != nil {
		return ExpertLog{}, d.err
	}
	return l, nil
}

// DecodeCamp parses an ExpertCamp request body. The log reference is
// required; the camp identifier is optional here and checked by the
// identifier strategy.
func DecodeCamp(body []byte, opts DecodeOptions) (ExpertCamp, error) {
	fold := cases.Fold()
	f, err := parseObject(body, fold)
	if err != nil {
		return ExpertCamp{}, err
	}

	var c ExpertCamp
	d := decoder{f: f, fold: fold}
	c.CampID = d.id("campId", opts.CampIDs)
	c.LogID = d.id("logId", opts.LogIDs)
	if d.err == nil && c.LogID.IsZero() {
		d.err = invalid("logId", "required")
	}
	c.Name = d.text("name", true)
	c.Date = d.text("date", true)
	c.Latitude = d.float("latitude")
	c.Longitude = d.float("longitude")
	c.Men = d.count("men")
	c.Women = d.count("women")
	c.Syringe = d.count("syringe")
	c.Pipe = d.count("pipe")
	c.Sandwich = d.count("sandwich")
	c.Soup = d.count("soup")
	c.Type = d.text("type", false)
	c.CampNotes = d.text("campNotes", false)
	c.Timestamp = d.text("timestamp", false)
	if d.err != nil {
		return ExpertCamp{}, d.err
	}
	return c, nil
}

// decoder keeps the first error and turns later reads into no-ops. Keys are
// given in their wire spelling, which is also the field named in errors.
type decoder struct {
	f    fields
	fold cases.Caser
	err  error
}

func (d *decoder) lookup(key string) *fastjson.Value {
	if d.err != nil {
		return nil
	}
	v, ok := d.f[d.fold.String(key)]
	if !ok || v.Type() == fastjson.TypeNull {
		return nil
	}
	return v
}

func (d *decoder) text(key string, required bool) string {
	v := d.lookup(key)
	if v == nil {
		if required && d.err == nil {
			d.err = invalid(key, "required")
		}
		return ""
	}
	var s string
	switch v.Type() {
	case fastjson.TypeString:
		s = string(v.GetStringBytes())
	case fastjson.TypeNumber:
		s = v.String()
	default:
		d.err = invalid(key, "expected a string, got %s", v.Type())
		return ""
	}
	if required && strings.TrimSpace(s) == "" {
		d.err = invalid(key, "required")
		return ""
	}
	return s
}

func (d *decoder) count(key string) int64 {
	v := d.lookup(key)
	if v == nil {
		return 0
	}
	var (
		n   int64
		err error
	)
	switch v.Type() {
	case fastjson.TypeNumber:
		n, err = v.Int64()
	case fastjson.TypeString:
		s := strings.TrimSpace(string(v.GetStringBytes()))
		if s == "" {
			return 0
		}
		n, err = strconv.ParseInt(s, 10, 64)
	default:
		d.err = invalid(key, "expected an integer, got %s", v.Type())
		return 0
	}
	if err != nil {
		d.err = invalid(key, "expected an integer")
		return 0
	}
	if n < 0 {
		d.err = invalid(key, "must not be negative")
		return 0
	}
	return n
}

func (d *decoder) float(key string) float64 {
	v := d.lookup(key)
	if v == nil {
		return 0
	}
	var (
		f   float64
		err error
	)
	switch v.Type() {
	case fastjson.TypeNumber:
		f, err = v.Float64()
	case fastjson.TypeString:
		s := strings.TrimSpace(string(v.GetStringBytes()))
		if s == "" {
			return 0
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		d.err = invalid(key, "expected a number, got %s", v.Type())
		return 0
	}
	if err != nil {
		d.err = invalid(key, "expected a number")
		return 0
	}
	return f
}

func (d *decoder) id(key string, kind IDKind) ID {
	v := d.lookup(key)
	if v == nil {
		return ID{}
	}
	var raw string
	switch v.Type() {
	case fastjson.TypeString:
		raw = string(v.GetStringBytes())
	case fastjson.TypeNumber:
		raw = v.String()
	default:
		d.err = invalid(key, "expected an identifier, got %s", v.Type())
		return ID{}
	}
	id, err := ParseID(raw, kind)
	if err != nil {
		d.err = invalid(key, "expected an integer identifier")
		return ID{}
	}
	return id
}
