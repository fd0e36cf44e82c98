// Package database keeps learned codebooks as diagnostic artifacts of a run.
package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/davecgh/go-xdr/xdr2"
	"github.com/go-sod/rad/internal/codebook"
	"github.com/go-sod/rad/internal/database"
	"github.com/go-sod/rad/internal/geom"
	"github.com/golang/snappy"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const bucketName = "codebook:"

var ErrNotFound = errors.New("codebook not found")

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) Keys() ([]uuid.UUID, error) {
	var keys []uuid.UUID
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			id, err := uuid.FromBytes(k)
			if err != nil {
				return fmt.Errorf("malformed key %x: %w", k, err)
			}
			keys = append(keys, id)
		}
		return nil
	})

	return keys, err
}

func (db *DB) Save(_ context.Context, runID uuid.UUID, cb *codebook.Codebook) error {
	blob, err := encode(cb)
	if err != nil {
		return err
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put(runID[:], blob); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func (db *DB) Load(_ context.Context, runID uuid.UUID) (*codebook.Codebook, error) {
	var blob []byte
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(runID[:])
		if v == nil {
			return ErrNotFound
		}
		blob = append([]byte(nil), v...)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load codebook %s: %w", runID, err)
	}

	return decode(blob)
}

func (db *DB) Delete(_ context.Context, runID uuid.UUID) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if err := b.Delete(runID[:]); err != nil {
			return fmt.Errorf("unable delete: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func encode(cb *codebook.Codebook) ([]byte, error) {
	rows := make([][]float64, cb.Len())
	for i, c := range cb.Centroids {
		rows[i] = c
	}
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, rows); err != nil {
		return nil, fmt.Errorf("xdr encode codebook: %w", err)
	}
	return snappy.Encode(nil, buf.Bytes()), nil
}

func decode(blob []byte) (*codebook.Codebook, error) {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("snappy decode codebook: %w", err)
	}
	var rows [][]float64
	if _, err := xdr.Unmarshal(bytes.NewReader(raw), &rows); err != nil {
		return nil, fmt.Errorf("xdr decode codebook: %w", err)
	}
	centroids := make([]geom.Point, len(rows))
	for i := range rows {
		centroids[i] = rows[i]
	}
	return codebook.New(centroids)
}
