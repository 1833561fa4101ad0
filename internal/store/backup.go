package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// BackupRecord is one line of a JSONL backup stream.
type BackupRecord struct {
	Collection Collection        `json:"collection"`
	ID         string            `json:"id"`
	Index      map[string]string `json:"index,omitempty"`
	Value      json.RawMessage   `json:"value"`
}

// Dump writes every row of b as JSONL, collections in parent-to-child order.
// It returns the number of records written.
func Dump(ctx context.Context, b Backend, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	n := 0
	for _, c := range Collections {
		rows, err := b.All(ctx, c)
		if err != nil {
			return n, err
		}
		for _, r := range rows {
			rec := BackupRecord{Collection: c, ID: r.ID, Index: r.Index, Value: json.RawMessage(r.JSON)}
			if !json.Valid(r.JSON) {
				return n, fmt.Errorf("dump %s/%s: stored value is not JSON", c, r.ID)
			}
			if err := enc.Encode(rec); err != nil {
				return n, err
			}
			n++
		}
	}
	if err := bw.Flush(); err != nil {
		return n, err
	}
	log.WithField("records", n).Debug("backup dumped")
	return n, nil
}

// ReadBackup parses a JSONL backup stream. Blank lines are skipped.
func ReadBackup(r io.Reader) ([]BackupRecord, error) {
	var out []BackupRecord
	sc := bufio.NewScanner(r)
	// Image items carry data URLs, so lines can be large.
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec BackupRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("parse backup line %d: %w", line, err)
		}
		if err := validateRow(rec.Collection, Row{ID: rec.ID, Index: rec.Index}); err != nil {
			return nil, fmt.Errorf("backup line %d: %w", line, err)
		}
		if len(rec.Value) == 0 {
			return nil, fmt.Errorf("backup line %d: missing value", line)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []BackupRecord{}
	}
	return out, nil
}

// Restore reads a backup stream and upserts every record into b. The whole
// stream is parsed before anything is written; rows are written parents first.
func Restore(ctx context.Context, b Backend, r io.Reader) (int, error) {
	recs, err := ReadBackup(r)
	if err != nil {
		return 0, err
	}
	rank := map[Collection]int{}
	for i, c := range Collections {
		rank[c] = i
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return rank[recs[i].Collection] < rank[recs[j].Collection]
	})
	n := 0
	for _, rec := range recs {
		row := Row{ID: rec.ID, Index: rec.Index, JSON: []byte(rec.Value)}
		if err := b.Put(ctx, rec.Collection, row); err != nil {
			return n, err
		}
		n++
	}
	log.WithField("records", n).Debug("backup restored")
	return n, nil
}
