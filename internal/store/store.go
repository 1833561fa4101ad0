package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

type Collection string

const (
	Boards   Collection = "boards"
	Sections Collection = "sections"
	Items    Collection = "items"
)

// Collections lists every collection in parent-to-child order.
var Collections = []Collection{Boards, Sections, Items}

// Index fields (foreign keys) that QueryByIndex accepts, per collection.
const (
	IndexBoardID   = "boardId"
	IndexSectionID = "sectionId"
)

var indexFields = map[Collection][]string{
	Boards:   nil,
	Sections: {IndexBoardID},
	Items:    {IndexSectionID},
}

// Row is one stored record. Index carries the values of the collection's
// secondary index fields; JSON is the opaque record body.
type Row struct {
	ID    string
	Index map[string]string
	JSON  []byte
}

// Backend is an async-safe key-value store with one secondary index per
// collection. There are no transactions across collections: callers order
// cascading deletes child-first themselves.
type Backend interface {
	Put(ctx context.Context, c Collection, row Row) error
	// Get reports ok=false when no record exists for id.
	Get(ctx context.Context, c Collection, id string) (Row, bool, error)
	QueryByIndex(ctx context.Context, c Collection, field, value string) ([]Row, error)
	All(ctx context.Context, c Collection) ([]Row, error)
	// Delete of a missing id is not an error.
	Delete(ctx context.Context, c Collection, id string) error
	Close() error
}

var ErrUnavailable = errors.New("store unavailable")

// StorageError wraps any backend failure (I/O, quota, closed backend).
type StorageError struct {
	Op         string
	Collection Collection
	ID         string
	Err        error
}

func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, c Collection, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Collection: c, ID: id, Err: err}
}

func checkCollection(c Collection) error {
	if _, ok := indexFields[c]; !ok {
		return fmt.Errorf("unknown collection %q", c)
	}
	return nil
}

func checkIndex(c Collection, field string) error {
	if err := checkCollection(c); err != nil {
		return err
	}
	for _, f := range indexFields[c] {
		if f == field {
			return nil
		}
	}
	return fmt.Errorf("collection %s has no index %q", c, field)
}

// IndexField returns the collection's single foreign-key field ("" for boards).
func IndexField(c Collection) string {
	fs := indexFields[c]
	if len(fs) == 0 {
		return ""
	}
	return fs[0]
}

func sortRows(rows []Row) []Row {
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	if rows == nil {
		rows = []Row{}
	}
	return rows
}

func validateRow(c Collection, row Row) error {
	if err := checkCollection(c); err != nil {
		return err
	}
	if row.ID == "" {
		return errors.New("row id is empty")
	}
	for k := range row.Index {
		if err := checkIndex(c, k); err != nil {
			return err
		}
	}
	return nil
}
