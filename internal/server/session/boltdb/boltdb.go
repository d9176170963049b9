// Package boltdb implements session.KV on a local bbolt file for
// single-node deployments.
package boltdb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/socialauth/internal/server/session"
)

var bucketSessions = []byte("sessions")

// Заголовок значения: unix nano времени истечения
const expiryHeaderSize = 8

// KV stores each value prefixed with its expiry. Expired values are
// invisible to readers and removed by PurgeExpired.
type KV struct {
	db     *bbolt.DB
	logger *slog.Logger
	now    func() time.Time
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ session.KV = (*KV)(nil)

// New opens (or creates) the bbolt file at path.
func New(path string, logger *slog.Logger) (*KV, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSessions); err != nil {
			return fmt.Errorf("failed to create sessions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &KV{
		db:     db,
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
	}, nil
}

func encode(value string, expires time.Time) []byte {
	buf := make([]byte, expiryHeaderSize+len(value))
	binary.BigEndian.PutUint64(buf, uint64(expires.UnixNano()))
	copy(buf[expiryHeaderSize:], value)
	return buf
}

// decode returns the value and whether it is still live at now.
func decode(raw []byte, now time.Time) (string, bool) {
	if len(raw) < expiryHeaderSize {
		return "", false
	}
	expires := int64(binary.BigEndian.Uint64(raw[:expiryHeaderSize]))
	if now.UnixNano() >= expires {
		return "", false
	}
	return string(raw[expiryHeaderSize:]), true
}

// Set stores value for ttl.
func (k *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := encode(value, k.now().Add(ttl))
	return k.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(key), data)
	})
}

// Get returns the live value or session.ErrNotFound.
func (k *KV) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		value string
		live  bool
	)
	err := k.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketSessions).Get([]byte(key))
		if raw == nil {
			return nil
		}
		// decode копирует данные: raw валиден только внутри транзакции
		value, live = decode(raw, k.now())
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	if !live {
		return "", session.ErrNotFound
	}
	return value, nil
}

// Delete removes key.
func (k *KV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(key))
	})
}

// Exists reports whether key holds a live value.
func (k *KV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := k.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, session.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Ping checks that the file is open and readable.
func (k *KV) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketSessions) == nil {
			return fmt.Errorf("sessions bucket not found")
		}
		return nil
	})
}

// PurgeExpired deletes every expired entry and returns how many were removed.
func (k *KV) PurgeExpired() (int, error) {
	now := k.now()
	removed := 0

	err := k.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)

		// Удаление под курсором во время обхода пропускает элементы,
		// поэтому сначала собираем ключи
		var expired [][]byte
		err := bucket.ForEach(func(key, raw []byte) error {
			if _, live := decode(raw, now); !live {
				expired = append(expired, append([]byte(nil), key...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, key := range expired {
			if err := bucket.Delete(key); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired keys: %w", err)
	}
	return removed, nil
}

// StartSweeper runs PurgeExpired every interval until Close is called.
func (k *KV) StartSweeper(interval time.Duration) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n, err := k.PurgeExpired()
				if err != nil {
					k.logger.Error("session sweep failed", "error", err)
					continue
				}
				if n > 0 {
					k.logger.Debug("expired sessions purged", "count", n)
				}
			case <-k.stop:
				return
			}
		}
	}()
}

// Close stops the sweeper and closes the file.
func (k *KV) Close() error {
	k.once.Do(func() { close(k.stop) })
	k.wg.Wait()
	return k.db.Close()
}
