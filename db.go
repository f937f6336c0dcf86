package main

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

var bucketName = []byte("responses")

func openCache(fpath string) (*bolt.DB, error) {
	db, err := bolt.Open(fpath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open boltdb at %s", fpath)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to create default bucket in boltdb")
	}
	return db, nil
}

// cachedModel answers repeated prompts from disk instead of calling the
// wrapped model again.
type cachedModel struct {
	Model
	db *bolt.DB
}

func (c *cachedModel) key(prompt string) []byte {
	sum := sha256.Sum256([]byte(c.Model.Name() + "\x00" + prompt))
	return sum[:]
}

func (c *cachedModel) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.key(prompt)
	var hit []byte
	if err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get(key); v != nil {
			hit = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return "", errors.Wrap(err, "read from cache")
	}
	if hit != nil {
		return string(hit), nil
	}

	text, err := c.Model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, []byte(text))
	}); err != nil {
		return "", errors.Wrap(err, "write to cache")
	}
	return text, nil
}

// forget drops the stored reply for prompt, so the next call asks again.
func (c *cachedModel) forget(prompt string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(c.key(prompt))
	})
}
