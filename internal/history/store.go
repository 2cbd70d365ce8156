// Package history keeps finished campaign summaries in a local BoltDB
// file so past runs can be reviewed. Summaries carry per-contact outcomes
// only; credentials and resume bytes are never written here.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/jobreach/coldreach/internal/campaign"
)

var bucketCampaigns = []byte("campaigns")

// Store is a BoltDB-backed campaign history.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCampaigns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create campaigns bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores a finished campaign summary.
func (s *Store) Save(sum *campaign.Summary) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(sum)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		return tx.Bucket(bucketCampaigns).Put(makeIndexKey(sum.StartedAt, sum.ID), data)
	})
}

// Get retrieves a summary by campaign ID.
func (s *Store) Get(id string) (*campaign.Summary, error) {
	var sum *campaign.Summary

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketCampaigns).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if idFromIndexKey(k) != id {
				continue
			}
			sum = &campaign.Summary{}
			return json.Unmarshal(v, sum)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sum == nil {
		return nil, fmt.Errorf("campaign %s not found", id)
	}
	return sum, nil
}

// List returns summaries newest first, up to limit (0 = all).
func (s *Store) List(limit int) ([]*campaign.Summary, error) {
	var out []*campaign.Summary

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketCampaigns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			sum := &campaign.Summary{}
			if err := json.Unmarshal(v, sum); err != nil {
				return fmt.Errorf("unmarshal summary %s: %w", k, err)
			}
			out = append(out, sum)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// makeIndexKey builds a timestamp-ordered key so cursor iteration walks
// runs chronologically.
func makeIndexKey(t time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d_%s", t.UnixNano(), id))
}

func idFromIndexKey(k []byte) string {
	parts := strings.SplitN(string(k), "_", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
