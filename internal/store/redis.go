package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"docledger/internal/ledger"
)

// RedisStore implements ledger.Store on Redis. Each project is one JSON
// string key; a set indexes the hashes and a list holds the journal, newest
// at the head. Writes WATCH the project key and commit with MULTI, so a
// create never overwrites and an update commits only if the stored version
// is the one the caller loaded and no other client wrote the key meanwhile.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
}

var _ ledger.Store = (*RedisStore)(nil)

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr   string
	DB     int
	Prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis_addr required for redis store")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, opts.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(rdb *goredis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) projectKey(hash string) string { return r.prefix + "project:" + hash }
func (r *RedisStore) indexKey() string              { return r.prefix + "projects" }
func (r *RedisStore) journalKey() string            { return r.prefix + "journal" }

func (r *RedisStore) Get(ctx context.Context, projectHash string) (*ledger.Project, error) {
	raw, err := r.rdb.Get(ctx, r.projectKey(projectHash)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("reading project: %w", err)
	}
	var p ledger.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding project %s: %w", projectHash, err)
	}
	if p.Version < 1 {
		p.Version = 1
	}
	return &p, nil
}

func (r *RedisStore) Create(ctx context.Context, p *ledger.Project, tx *ledger.Transaction) error {
	return r.write(ctx, p, tx, false)
}

func (r *RedisStore) Update(ctx context.Context, p *ledger.Project, tx *ledger.Transaction) error {
	return r.write(ctx, p, tx, true)
}

// write stores p and pushes tx in one MULTI block. mustExist selects between
// update semantics, which also checks the stored version, and create.
func (r *RedisStore) write(ctx context.Context, p *ledger.Project, tx *ledger.Transaction, mustExist bool) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	entry, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}

	key := r.projectKey(p.ProjectHash)
	err = r.rdb.Watch(ctx, func(t *goredis.Tx) error {
		if mustExist {
			if err := r.checkVersion(ctx, t, key, p.Version-1); err != nil {
				return err
			}
		} else {
			n, err := t.Exists(ctx, key).Result()
			if err != nil {
				return fmt.Errorf("checking project: %w", err)
			}
			if n > 0 {
				return ledger.ErrProjectExists
			}
		}
		_, err = t.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, r.indexKey(), p.ProjectHash)
			pipe.LPush(ctx, r.journalKey(), entry)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, goredis.TxFailedErr) {
		if !mustExist {
			return ledger.ErrProjectExists
		}
		return fmt.Errorf("project %s: %w", p.ProjectHash, ledger.ErrProjectModified)
	}
	return err
}

// checkVersion reads the watched key and compares its version with want.
func (r *RedisStore) checkVersion(ctx context.Context, t *goredis.Tx, key string, want int64) error {
	raw, err := t.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ledger.ErrProjectNotFound
		}
		return fmt.Errorf("reading project: %w", err)
	}
	var stored struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("decoding project version: %w", err)
	}
	if stored.Version < 1 {
		stored.Version = 1
	}
	if stored.Version != want {
		return fmt.Errorf("stored version %d: %w", stored.Version, ledger.ErrProjectModified)
	}
	return nil
}

func (r *RedisStore) Record(ctx context.Context, tx *ledger.Transaction) error {
	entry, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}
	if err := r.rdb.LPush(ctx, r.journalKey(), entry).Err(); err != nil {
		return fmt.Errorf("recording transaction: %w", err)
	}
	return nil
}

func (r *RedisStore) ListTransactions(ctx context.Context, limit int) ([]*ledger.Transaction, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raws, err := r.rdb.LRange(ctx, r.journalKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	out := make([]*ledger.Transaction, 0, len(raws))
	for _, raw := range raws {
		var t ledger.Transaction
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("decoding transaction: %w", err)
		}
		out = append(out, &t)
	}
	return out, nil
}

func (r *RedisStore) ProjectHashes(ctx context.Context) ([]string, error) {
	hashes, err := r.rdb.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("reading project index: %w", err)
	}
	sort.Strings(hashes)
	return hashes, nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
