package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bakape/forum/common"
	"github.com/boltdb/bolt"
	"github.com/go-playground/log"
	"github.com/redis/go-redis/v9"
)

const (
	detailsBucket = "page_details"
	redisPrefix   = "forum:page_details:"
)

// DetailsCache memoises remote page details by URL. Implementations log and
// swallow their own errors.
type DetailsCache interface {
	Get(ctx context.Context, url string) (common.RemotePageDetails, bool)
	Set(ctx context.Context, url string, d common.RemotePageDetails)
	Close() error
}

// OpenCache opens a details cache backend by name. Returns nil for "none" or
// an empty name.
func OpenCache(backend, path, redisURL string, ttl time.Duration) (
	DetailsCache, error,
) {
	switch backend {
	case "", "none":
		return nil, nil
	case "bolt":
		return OpenBoltCache(path, ttl)
	case "redis":
		return OpenRedisCache(redisURL, ttl)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", backend)
	}
}

type cachedDetails struct {
	Details common.RemotePageDetails `json:"details"`
	Expires int64                    `json:"expires"`
}

type boltCache struct {
	db  *bolt.DB
	ttl time.Duration
}

// OpenBoltCache opens or creates a bolt database file at path
func OpenBoltCache(path string, ttl time.Duration) (DetailsCache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(detailsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltCache{db: db, ttl: ttl}, nil
}

func (c *boltCache) Get(_ context.Context, url string,
) (d common.RemotePageDetails, ok bool) {
	var buf []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		// Copy, as the value is only valid during the transaction
		buf = append(buf, tx.Bucket([]byte(detailsBucket)).Get([]byte(url))...)
		return nil
	})
	if err != nil {
		logCacheError(url, err)
		return
	}
	return decodeCached(url, buf)
}

func (c *boltCache) Set(_ context.Context, url string, d common.RemotePageDetails) {
	buf, err := encodeCached(d, c.ttl)
	if err == nil {
		err = c.db.Batch(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte(detailsBucket)).Put([]byte(url), buf)
		})
	}
	if err != nil {
		logCacheError(url, err)
	}
}

func (c *boltCache) Close() error {
	return c.db.Close()
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedisCache connects to a redis server.
// URL format: redis://[:password@]host:port/db
func OpenRedisCache(redisURL string, ttl time.Duration) (DetailsCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &redisCache{client: client, ttl: ttl}, nil
}

func (c *redisCache) Get(ctx context.Context, url string,
) (d common.RemotePageDetails, ok bool) {
	buf, err := c.client.Get(ctx, redisPrefix+url).Bytes()
	switch err {
	case nil:
		return decodeCached(url, buf)
	case redis.Nil:
		return
	default:
		logCacheError(url, err)
		return
	}
}

func (c *redisCache) Set(ctx context.Context, url string, d common.RemotePageDetails) {
	buf, err := encodeCached(d, c.ttl)
	if err == nil {
		err = c.client.Set(ctx, redisPrefix+url, buf, c.ttl).Err()
	}
	if err != nil {
		logCacheError(url, err)
	}
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

func encodeCached(d common.RemotePageDetails, ttl time.Duration) ([]byte, error) {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).Unix()
	}
	return json.Marshal(cachedDetails{
		Details: d,
		Expires: exp,
	})
}

func decodeCached(url string, buf []byte) (d common.RemotePageDetails, ok bool) {
	if len(buf) == 0 {
		return
	}
	var c cachedDetails
	if err := json.Unmarshal(buf, &c); err != nil {
		logCacheError(url, err)
		return
	}
	if c.Expires != 0 && c.Expires < time.Now().Unix() {
		return
	}
	return c.Details, true
}

func logCacheError(url string, err error) {
	log.WithFields(log.F("url", url)).Warnf("page details cache: %s", err)
}
