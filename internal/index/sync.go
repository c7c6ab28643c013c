package index

import (
	"log/slog"

	"github.com/starford/virtualta/internal/checksum"
	"github.com/starford/virtualta/internal/models"
)

// SyncStats counts what a Sync pass changed.
type SyncStats struct {
	Upserted  int `json:"upserted"`
	Moved     int `json:"moved"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// Sync brings the index in line with docs:
//   - new or changed documents are upserted
//   - unchanged documents whose cache position moved are repositioned
//   - documents no longer in docs are deleted
func Sync(db *DB, docs []models.Document, logger *slog.Logger) (SyncStats, error) {
	var st SyncStats
	indexed, err := db.AllChecksums()
	if err != nil {
		return st, err
	}

	live := make(map[string]struct{}, len(docs))
	for pos, d := range docs {
		live[d.URL] = struct{}{}
		cs := checksum.Document(d)
		prev, ok := indexed[d.URL]

		switch {
		case ok && prev.Checksum == cs && prev.Position == pos:
			st.Unchanged++
		case ok && prev.Checksum == cs:
			if err := db.SetPosition(d.URL, pos); err != nil {
				logger.Warn("sync: reposition failed", slog.String("url", d.URL), slog.String("error", err.Error()))
				continue
			}
			st.Moved++
		default:
			row := DocumentRow{
				URL:           d.URL,
				Position:      pos,
				Title:         d.Title,
				Type:          string(d.Type),
				SectionOrDate: d.SectionOrDate,
				Checksum:      cs,
				Content:       d.Content,
			}
			if err := db.UpsertDocument(row); err != nil {
				logger.Warn("sync: index failed", slog.String("url", d.URL), slog.String("error", err.Error()))
				continue
			}
			logger.Debug("sync: indexed", slog.String("url", d.URL))
			st.Upserted++
		}
	}

	for url := range indexed {
		if _, ok := live[url]; ok {
			continue
		}
		if err := db.DeleteDocument(url); err != nil {
			logger.Warn("sync: delete failed", slog.String("url", url), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("url", url))
		st.Removed++
	}

	logger.Info("index synced",
		slog.Int("upserted", st.Upserted),
		slog.Int("moved", st.Moved),
		slog.Int("removed", st.Removed),
		slog.Int("unchanged", st.Unchanged))
	return st, nil
}
