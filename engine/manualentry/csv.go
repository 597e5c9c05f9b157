package manualentry

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/bvtime/reconciler/engine/core"
)

// csvColumns is the exact column order from §6. No third-party CSV library
// in the retrieved pack targets plain tabular CSV (the closest fits —
// Graph/WIQL JSON clients, YAML config loaders — all speak structured
// formats instead), so this stays on encoding/csv.
var csvColumns = []string{
	"entry_id", "work_item_id", "hours", "date", "description",
	"user_id", "created_at", "synced", "synced_at",
}

// WriteCSV renders entries in the column order from §6.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvColumns); err != nil {
		return core.NewError(err, core.KindIOError, nil)
	}
	for _, e := range entries {
		syncedAt := ""
		if e.SyncedAt != nil {
			syncedAt = e.SyncedAt.Format(time.RFC3339)
		}
		record := []string{
			e.ID.String(),
			strconv.Itoa(e.WorkItemID),
			strconv.FormatFloat(e.Hours, 'f', -1, 64),
			e.Date,
			e.Description,
			e.UserID,
			e.CreatedAt.Format(time.RFC3339),
			strconv.FormatBool(e.Synced),
			syncedAt,
		}
		if err := cw.Write(record); err != nil {
			return core.NewError(err, core.KindIOError, nil)
		}
	}
	return cw.Error()
}

// ReadCSV parses entries from a §6-shaped CSV. Import requires at least
// the first five columns (entry_id is regenerated, not trusted from
// input, so work_item_id through description/user_id are the load-bearing
// ones); trailing columns are optional and default to zero values.
func ReadCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, core.NewError(err, core.KindIOError, nil)
	}
	cols := indexColumns(header)

	var entries []Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.NewError(err, core.KindCorruptStore, nil)
		}

		entry, err := parseRecord(record, cols)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseRecord(record []string, cols map[string]int) (Entry, error) {
	workItemID, err := strconv.Atoi(field(record, cols, "work_item_id"))
	if err != nil {
		return Entry{}, core.NewError(err, core.KindInvalidInput, map[string]any{"field": "work_item_id"})
	}
	hours, err := strconv.ParseFloat(field(record, cols, "hours"), 64)
	if err != nil {
		return Entry{}, core.NewError(err, core.KindInvalidInput, map[string]any{"field": "hours"})
	}

	entry := Entry{
		WorkItemID:  workItemID,
		Hours:       hours,
		Date:        field(record, cols, "date"),
		Description: field(record, cols, "description"),
		UserID:      field(record, cols, "user_id"),
	}

	if idStr := field(record, cols, "entry_id"); idStr != "" {
		if id, err := core.ParseID(idStr); err == nil {
			entry.ID = id
		}
	}
	if createdStr := field(record, cols, "created_at"); createdStr != "" {
		if t, err := time.Parse(time.RFC3339, createdStr); err == nil {
			entry.CreatedAt = t
		}
	}
	if syncedStr := field(record, cols, "synced"); syncedStr != "" {
		entry.Synced, _ = strconv.ParseBool(syncedStr)
	}
	if syncedAtStr := field(record, cols, "synced_at"); syncedAtStr != "" {
		if t, err := time.Parse(time.RFC3339, syncedAtStr); err == nil {
			entry.SyncedAt = &t
		}
	}

	return entry, nil
}
