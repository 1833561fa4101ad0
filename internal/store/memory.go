package store

import (
	"context"
	"sync"
)

// Memory is an in-process Backend. It is used by tests and `--backend memory`.
type Memory struct {
	mu     sync.RWMutex
	closed bool
	rows   map[Collection]map[string]Row
}

func NewMemory() *Memory {
	m := &Memory{rows: map[Collection]map[string]Row{}}
	for _, c := range Collections {
		m.rows[c] = map[string]Row{}
	}
	return m
}

func (m *Memory) Put(ctx context.Context, c Collection, row Row) error {
	if err := validateRow(c, row); err != nil {
		return storageErr("put", c, row.ID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storageErr("put", c, row.ID, ErrUnavailable)
	}
	m.rows[c][row.ID] = cloneRow(row)
	return nil
}

func (m *Memory) Get(ctx context.Context, c Collection, id string) (Row, bool, error) {
	if err := checkCollection(c); err != nil {
		return Row{}, false, storageErr("get", c, id, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Row{}, false, storageErr("get", c, id, ErrUnavailable)
	}
	r, ok := m.rows[c][id]
	if !ok {
		return Row{}, false, nil
	}
	return cloneRow(r), true, nil
}

func (m *Memory) QueryByIndex(ctx context.Context, c Collection, field, value string) ([]Row, error) {
	if err := checkIndex(c, field); err != nil {
		return nil, storageErr("query", c, "", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storageErr("query", c, "", ErrUnavailable)
	}
	var out []Row
	for _, r := range m.rows[c] {
		if r.Index[field] == value {
			out = append(out, cloneRow(r))
		}
	}
	return sortRows(out), nil
}

func (m *Memory) All(ctx context.Context, c Collection) ([]Row, error) {
	if err := checkCollection(c); err != nil {
		return nil, storageErr("all", c, "", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storageErr("all", c, "", ErrUnavailable)
	}
	out := make([]Row, 0, len(m.rows[c]))
	for _, r := range m.rows[c] {
		out = append(out, cloneRow(r))
	}
	return sortRows(out), nil
}

func (m *Memory) Delete(ctx context.Context, c Collection, id string) error {
	if err := checkCollection(c); err != nil {
		return storageErr("delete", c, id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storageErr("delete", c, id, ErrUnavailable)
	}
	delete(m.rows[c], id)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func cloneRow(r Row) Row {
	out := Row{ID: r.ID, JSON: append([]byte(nil), r.JSON...)}
	if r.Index != nil {
		out.Index = make(map[string]string, len(r.Index))
		for k, v := range r.Index {
			out.Index[k] = v
		}
	}
	return out
}
