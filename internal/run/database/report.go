// Package database stores run reports in bolt.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sod/rad/internal/database"
	"github.com/go-sod/rad/internal/run/model"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const bucketName = "run:"

var ErrNotFound = errors.New("run not found")

type FilterFn func(report model.Report) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) Store(_ context.Context, report model.Report) error {
	bytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(report.ID.String()), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}
	return nil
}

func (db *DB) Find(_ context.Context, id uuid.UUID) (model.Report, error) {
	var report model.Report
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id.String()))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &report)
	})
	if err != nil {
		return model.Report{}, fmt.Errorf("find run %s: %w", id, err)
	}
	return report, nil
}

// FindAll returns every report accepted by filter, or every report when
// filter is nil.
func (db *DB) FindAll(_ context.Context, filter FilterFn) ([]model.Report, error) {
	var reports []model.Report
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var report model.Report
			if err := json.Unmarshal(v, &report); err != nil {
				return fmt.Errorf("decode run %s: %w", k, err)
			}
			if filter == nil || filter(report) {
				reports = append(reports, report)
			}
			return nil
		})
	})
	return reports, err
}

// Keys lists run ids without decoding the reports.
func (db *DB) Keys() ([]uuid.UUID, error) {
	var keys []uuid.UUID
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			id, err := uuid.ParseBytes(k)
			if err != nil {
				return fmt.Errorf("malformed key %q: %w", k, err)
			}
			keys = append(keys, id)
		}
		return nil
	})
	return keys, err
}

func (db *DB) Delete(_ context.Context, id uuid.UUID) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if err := b.Delete([]byte(id.String())); err != nil {
			return fmt.Errorf("unable delete: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}
	return nil
}
