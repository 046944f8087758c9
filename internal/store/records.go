package store

import (
	"context"
	"fmt"

	"github.com/roach88/expertlog/internal/record"
)

// InsertLog writes one ExpertLog and returns its stored identifier.
//
// A zero LogID leaves the identifier to the store (serial mode); otherwise the
// given value is written verbatim, which is how the secondary receives the
// primary's identifier.
func (s *Store) InsertLog(ctx context.Context, l record.ExpertLog) (record.ID, error) {
	kind, params := InsertLog, l.Values()
	if l.LogID.IsZero() {
		kind, params = InsertLogAuto, params[1:]
	}
	return s.insertReturningID(ctx, kind, "logid", params)
}

// InsertCamp writes one ExpertCamp and returns its stored identifier. The
// referenced log must exist in this store.
func (s *Store) InsertCamp(ctx context.Context, c record.ExpertCamp) (record.ID, error) {
	kind, params := InsertCamp, c.Values()
	if c.CampID.IsZero() {
		kind, params = InsertCampAuto, params[1:]
	}
	return s.insertReturningID(ctx, kind, "campid", params)
}

func (s *Store) insertReturningID(ctx context.Context, kind StatementKind, col string, params []any) (record.ID, error) {
	rows, err := s.Execute(ctx, kind, params...)
	if err != nil {
		return record.ID{}, err
	}
	if len(rows) != 1 {
		return record.ID{}, newError(s.name, kind.String(), fmt.Errorf("expected 1 returned row, got %d", len(rows)))
	}
	var id record.ID
	if err := id.Scan(rows[0][col]); err != nil {
		return record.ID{}, newError(s.name, kind.String(), err)
	}
	return id, nil
}

// ReadLogs returns every ExpertLog in the configured order.
// Returns an empty slice (not nil) if the table is empty.
func (s *Store) ReadLogs(ctx context.Context) ([]record.ExpertLog, error) {
	rows, err := s.Execute(ctx, SelectLogs)
	if err != nil {
		return nil, err
	}
	logs := make([]record.ExpertLog, 0, len(rows))
	for _, row := range rows {
		l, err := record.LogFromRow(row)
		if err != nil {
			return nil, newError(s.name, SelectLogs.String(), err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// ReadCamps returns every ExpertCamp ordered by campid descending.
func (s *Store) ReadCamps(ctx context.Context) ([]record.ExpertCamp, error) {
	return s.readCamps(ctx, SelectCamps)
}

// ReadCampsForLog returns the camps referencing logID, campid descending.
func (s *Store) ReadCampsForLog(ctx context.Context, logID record.ID) ([]record.ExpertCamp, error) {
	return s.readCamps(ctx, SelectCampsForLog, logID)
}

func (s *Store) readCamps(ctx context.Context, kind StatementKind, params ...any) ([]record.ExpertCamp, error) {
	rows, err := s.Execute(ctx, kind, params...)
	if err != nil {
		return nil, err
	}
	camps := make([]record.ExpertCamp, 0, len(rows))
	for _, row := range rows {
		c, err := record.CampFromRow(row)
		if err != nil {
			return nil, newError(s.name, kind.String(), err)
		}
		camps = append(camps, c)
	}
	return camps, nil
}

// DeleteLog removes one ExpertLog; its camps go with it through the
// cascading foreign key. Returns the number of log rows removed (0 or 1).
func (s *Store) DeleteLog(ctx context.Context, id record.ID) (int64, error) {
	return s.execAffected(ctx, DeleteLog, id)
}

func (s *Store) execAffected(ctx context.Context, kind StatementKind, params ...any) (int64, error) {
	rows, err := s.Execute(ctx, kind, params...)
	if err != nil {
		return 0, err
	}
	n, _ := rows[0]["rowsaffected"].(int64)
	return n, nil
}
