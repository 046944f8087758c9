package store

import (
	"fmt"
	"strings"

	"github.com/roach88/expertlog/internal/record"
)

// StatementKind names one fixed statement of the connector.
type StatementKind int

const (
	CreateLogTable StatementKind = iota
	CreateCampTable
	CreateOutboxTable

	// InsertLog writes every column including logid. InsertLogAuto leaves
	// logid to the store. Both return the stored logid.
	InsertLog
	InsertLogAuto
	InsertCamp
	InsertCampAuto

	SelectLogs
	SelectCamps
	SelectCampsForLog
	DeleteLog

	InsertOutbox
	SelectOutbox
	DeleteOutbox

	// CountOutboxForLog counts entries touching one log or its camps.
	CountOutboxForLog
)

var statementNames = [...]string{
	CreateLogTable:    "create log table",
	CreateCampTable:   "create camp table",
	CreateOutboxTable: "create outbox table",
	InsertLog:         "insert log",
	InsertLogAuto:     "insert log",
	InsertCamp:        "insert camp",
	InsertCampAuto:    "insert camp",
	SelectLogs:        "select logs",
	SelectCamps:       "select camps",
	SelectCampsForLog: "select camps for log",
	DeleteLog:         "delete log",
	InsertOutbox:      "insert outbox",
	SelectOutbox:      "select outbox",
	DeleteOutbox:      "delete outbox",
	CountOutboxForLog: "count outbox for log",
}

func (k StatementKind) String() string {
	if k >= 0 && int(k) < len(statementNames) {
		return statementNames[k]
	}
	return fmt.Sprintf("statement(%d)", int(k))
}

// returnsRows reports whether the statement is run with QueryContext.
// Everything else goes through ExecContext and reports rows affected.
func (k StatementKind) returnsRows() bool {
	switch k {
	case InsertLog, InsertLogAuto, InsertCamp, InsertCampAuto,
		SelectLogs, SelectCamps, SelectCampsForLog,
		InsertOutbox, SelectOutbox, CountOutboxForLog:
		return true
	}
	return false
}

// Order selects the ordering of the log read endpoint.
type Order string

const (
	// OrderByID sorts logs by logid descending.
	OrderByID Order = "id"

	// OrderByDate sorts logs by date descending, then logid descending.
	OrderByDate Order = "date"
)

// ParseOrder validates an order name.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderByID, OrderByDate:
		return o, nil
	case "":
		return OrderByID, nil
	}
	return "", fmt.Errorf("invalid log order %q: must be %q or %q", s, OrderByID, OrderByDate)
}

// outboxColumns is the column order of replication_outbox, excluding id.
var outboxColumns = []record.Column{
	{Name: "entity"},
	{Name: "op"},
	{Name: "recordid"},
	{Name: "logref"},
	{Name: "payload"},
	{Name: "reason"},
	{Name: "createdat"},
}

// buildStatements renders every statement for one dialect and config.
func buildStatements(d dialect, cfg Config) map[StatementKind]string {
	logCols := record.LogColumns
	campCols := record.CampColumns

	logOrder := `"logid" DESC`
	if cfg.LogOrder == OrderByDate {
		logOrder = `"date" DESC, "logid" DESC`
	}

	insert := func(table string, cols []record.Column, returning string) string {
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			table, columnList(cols), d.params(len(cols)), quote(returning))
	}

	return map[StatementKind]string{
		CreateLogTable: `CREATE TABLE IF NOT EXISTS expert_log (
	"logid" ` + d.idColumn(cfg.LogIDs) + `,
	"name" TEXT NOT NULL,
	"date" TEXT NOT NULL,
	"totalmen" ` + d.intType + ` NOT NULL DEFAULT 0,
	"totalwomen" ` + d.intType + ` NOT NULL DEFAULT 0,
	"totalsyringe" ` + d.intType + ` NOT NULL DEFAULT 0,
	"totalpipe" ` + d.intType + ` NOT NULL DEFAULT 0,
	"totalsandwich" ` + d.intType + ` NOT NULL DEFAULT 0,
	"totalsoup" ` + d.intType + ` NOT NULL DEFAULT 0,
	"notes" TEXT NOT NULL DEFAULT ''
)`,
		CreateCampTable: `CREATE TABLE IF NOT EXISTS expert_camp (
	"campid" ` + d.idColumn(cfg.CampIDs) + `,
	"logid" ` + d.refColumn(cfg.LogIDs) + ` NOT NULL REFERENCES expert_log("logid") ON DELETE CASCADE,
	"name" TEXT NOT NULL,
	"date" TEXT NOT NULL,
	"latitude" ` + d.realType + ` NOT NULL DEFAULT 0,
	"longitude" ` + d.realType + ` NOT NULL DEFAULT 0,
	"men" ` + d.intType + ` NOT NULL DEFAULT 0,
	"women" ` + d.intType + ` NOT NULL DEFAULT 0,
	"syringe" ` + d.intType + ` NOT NULL DEFAULT 0,
	"pipe" ` + d.intType + ` NOT NULL DEFAULT 0,
	"sandwich" ` + d.intType + ` NOT NULL DEFAULT 0,
	"soup" ` + d.intType + ` NOT NULL DEFAULT 0,
	"type" TEXT NOT NULL DEFAULT '',
	"campnotes" TEXT NOT NULL DEFAULT '',
	"timestamp" TEXT NOT NULL DEFAULT ''
)`,
		CreateOutboxTable: `CREATE TABLE IF NOT EXISTS replication_outbox (
	"id" ` + d.serialKey + `,
	"entity" TEXT NOT NULL,
	"op" TEXT NOT NULL,
	"recordid" TEXT NOT NULL,
	"logref" TEXT NOT NULL,
	"payload" ` + d.blobType + ` NOT NULL,
	"reason" TEXT NOT NULL,
	"createdat" TEXT NOT NULL
)`,

		InsertLog:      insert("expert_log", logCols, "logid"),
		InsertLogAuto:  insert("expert_log", logCols[1:], "logid"),
		InsertCamp:     insert("expert_camp", campCols, "campid"),
		InsertCampAuto: insert("expert_camp", campCols[1:], "campid"),

		SelectLogs: fmt.Sprintf("SELECT %s FROM expert_log ORDER BY %s",
			columnList(logCols), logOrder),
		SelectCamps: fmt.Sprintf(`SELECT %s FROM expert_camp ORDER BY "campid" DESC`,
			columnList(campCols)),
		SelectCampsForLog: fmt.Sprintf(`SELECT %s FROM expert_camp WHERE "logid" = %s ORDER BY "campid" DESC`,
			columnList(campCols), d.param(1)),
		DeleteLog: `DELETE FROM expert_log WHERE "logid" = ` + d.param(1),

		InsertOutbox: insert("replication_outbox", outboxColumns, "id"),
		SelectOutbox: fmt.Sprintf(`SELECT "id", %s FROM replication_outbox ORDER BY "id" ASC LIMIT %s`,
			columnList(outboxColumns), d.param(1)),
		DeleteOutbox: `DELETE FROM replication_outbox WHERE "id" = ` + d.param(1),
		CountOutboxForLog: `SELECT COUNT(*) AS "pending" FROM replication_outbox WHERE "logref" = ` +
			d.param(1),
	}
}
