package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "moodboard"

// Redis keeps each collection in a hash (id -> json). Each index value owns a
// set of ids, and a per-collection hash remembers a row's current index value
// so re-puts and deletes can drop stale set memberships.
type Redis struct {
	client *redis.Client
	prefix string
	owned  bool

	mu     sync.RWMutex
	closed bool
}

// NewRedis wraps an existing client. The caller keeps ownership of the client.
func NewRedis(client *redis.Client, prefix string) (*Redis, error) {
	if client == nil {
		return nil, storageErr("open", "", "", errors.New("redis client is nil"))
	}
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}, nil
}

// OpenRedis dials url (redis://...) and pings the server.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, storageErr("open", "", "", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, storageErr("open", "", "", err)
	}
	r, err := NewRedis(client, defaultRedisPrefix)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	r.owned = true
	return r, nil
}

func (r *Redis) dataKey(c Collection) string { return r.prefix + ":" + string(c) }
func (r *Redis) fkKey(c Collection) string   { return r.prefix + ":" + string(c) + ":fk" }
func (r *Redis) idxKey(c Collection, field, value string) string {
	return r.prefix + ":" + string(c) + ":idx:" + field + ":" + value
}

func (r *Redis) live() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrUnavailable
	}
	return nil
}

func (r *Redis) Put(ctx context.Context, c Collection, row Row) error {
	if err := validateRow(c, row); err != nil {
		return storageErr("put", c, row.ID, err)
	}
	if err := r.live(); err != nil {
		return storageErr("put", c, row.ID, err)
	}
	field := IndexField(c)
	var prev string
	if field != "" {
		v, err := r.client.HGet(ctx, r.fkKey(c), row.ID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return storageErr("put", c, row.ID, err)
		}
		prev = v
	}

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, r.dataKey(c), row.ID, row.JSON)
		if field != "" {
			next := row.Index[field]
			if prev != "" && prev != next {
				p.SRem(ctx, r.idxKey(c, field, prev), row.ID)
			}
			p.HSet(ctx, r.fkKey(c), row.ID, next)
			p.SAdd(ctx, r.idxKey(c, field, next), row.ID)
		}
		return nil
	})
	return storageErr("put", c, row.ID, err)
}

func (r *Redis) Get(ctx context.Context, c Collection, id string) (Row, bool, error) {
	if err := checkCollection(c); err != nil {
		return Row{}, false, storageErr("get", c, id, err)
	}
	if err := r.live(); err != nil {
		return Row{}, false, storageErr("get", c, id, err)
	}
	data, err := r.client.HGet(ctx, r.dataKey(c), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, storageErr("get", c, id, err)
	}
	row := Row{ID: id, JSON: data}
	if field := IndexField(c); field != "" {
		fk, err := r.client.HGet(ctx, r.fkKey(c), id).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return Row{}, false, storageErr("get", c, id, err)
		}
		row.Index = map[string]string{field: fk}
	}
	return row, true, nil
}

func (r *Redis) QueryByIndex(ctx context.Context, c Collection, field, value string) ([]Row, error) {
	if err := checkIndex(c, field); err != nil {
		return nil, storageErr("query", c, "", err)
	}
	if err := r.live(); err != nil {
		return nil, storageErr("query", c, "", err)
	}
	ids, err := r.client.SMembers(ctx, r.idxKey(c, field, value)).Result()
	if err != nil {
		return nil, storageErr("query", c, "", err)
	}
	if len(ids) == 0 {
		return []Row{}, nil
	}
	sort.Strings(ids)
	vals, err := r.client.HMGet(ctx, r.dataKey(c), ids...).Result()
	if err != nil {
		return nil, storageErr("query", c, "", err)
	}
	out := make([]Row, 0, len(ids))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// Index entry without a record: skip rather than fail the query.
			continue
		}
		out = append(out, Row{ID: ids[i], Index: map[string]string{field: value}, JSON: []byte(s)})
	}
	return out, nil
}

func (r *Redis) All(ctx context.Context, c Collection) ([]Row, error) {
	if err := checkCollection(c); err != nil {
		return nil, storageErr("all", c, "", err)
	}
	if err := r.live(); err != nil {
		return nil, storageErr("all", c, "", err)
	}
	data, err := r.client.HGetAll(ctx, r.dataKey(c)).Result()
	if err != nil {
		return nil, storageErr("all", c, "", err)
	}
	var fks map[string]string
	field := IndexField(c)
	if field != "" {
		fks, err = r.client.HGetAll(ctx, r.fkKey(c)).Result()
		if err != nil {
			return nil, storageErr("all", c, "", err)
		}
	}
	out := make([]Row, 0, len(data))
	for id, js := range data {
		row := Row{ID: id, JSON: []byte(js)}
		if field != "" {
			row.Index = map[string]string{field: fks[id]}
		}
		out = append(out, row)
	}
	return sortRows(out), nil
}

func (r *Redis) Delete(ctx context.Context, c Collection, id string) error {
	if err := checkCollection(c); err != nil {
		return storageErr("delete", c, id, err)
	}
	if err := r.live(); err != nil {
		return storageErr("delete", c, id, err)
	}
	field := IndexField(c)
	var fk string
	if field != "" {
		v, err := r.client.HGet(ctx, r.fkKey(c), id).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return storageErr("delete", c, id, err)
		}
		fk = v
	}
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, r.dataKey(c), id)
		if field != "" {
			p.HDel(ctx, r.fkKey(c), id)
			if fk != "" {
				p.SRem(ctx, r.idxKey(c, field, fk), id)
			}
		}
		return nil
	})
	return storageErr("delete", c, id, err)
}

func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.owned {
		return r.client.Close()
	}
	return nil
}
