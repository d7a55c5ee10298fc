package redisqueue

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/offline"
)

// maxTxRetries bounds optimistic transaction retries when a watched key changes.
const maxTxRetries = 10

// Queue is an offline.Queue stored in redis:
// `<key>` is a list of submission IDs in FIFO order and `<key>:items` a hash of the submissions by ID.
type Queue struct {
	client   *redis.Client
	listKey  string
	itemsKey string
}

var _ offline.Queue = (*Queue)(nil)

// Connect opens a redis client and checks the connection.
func Connect(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

func New(client *redis.Client, key string) *Queue {
	return &Queue{client: client, listKey: key, itemsKey: key + ":items"}
}

// retry runs fn in a WATCH transaction on the items hash, retrying when it changed meanwhile.
func (q *Queue) retry(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := q.client.Watch(ctx, fn, q.itemsKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return errors.New("redis transaction: too many retries")
}

func (q *Queue) Enqueue(ctx context.Context, s offline.Submission) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding submission")
	}
	return q.retry(ctx, func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, q.itemsKey, s.ID).Result()
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, q.itemsKey, s.ID, data)
			pipe.RPush(ctx, q.listKey, s.ID)
			return nil
		})
		return err
	})
}

func (q *Queue) Pending(ctx context.Context, limit int) ([]offline.Submission, error) {
	stop := int64(-1) // all
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := q.client.LRange(ctx, q.listKey, 0, stop).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis LRANGE")
	}
	if len(ids) == 0 {
		return []offline.Submission{}, nil
	}

	vals, err := q.client.HMGet(ctx, q.itemsKey, ids...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis HMGET")
	}
	subs := make([]offline.Submission, 0, len(vals))
	for i, val := range vals {
		str, ok := val.(string)
		if !ok {
			continue // removed meanwhile
		}
		var s offline.Submission
		if err := json.Unmarshal([]byte(str), &s); err != nil {
			return nil, errors.Wrapf(err, "decoding submission %s", ids[i])
		}
		subs = append(subs, s)
	}
	return subs, nil
}

func (q *Queue) Remove(ctx context.Context, id string) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.listKey, 0, id)
		pipe.HDel(ctx, q.itemsKey, id)
		return nil
	})
	return errors.Wrap(err, "redis remove")
}

func (q *Queue) MarkAttempt(ctx context.Context, id string) error {
	return q.retry(ctx, func(tx *redis.Tx) error {
		str, err := tx.HGet(ctx, q.itemsKey, id).Result()
		if errors.Is(err, redis.Nil) {
			return offline.ErrSubmissionNotFound
		}
		if err != nil {
			return err
		}

		var s offline.Submission
		if err = json.Unmarshal([]byte(str), &s); err != nil {
			return errors.Wrapf(err, "decoding submission %s", id)
		}
		s.Attempts++
		data, err := json.Marshal(s)
		if err != nil {
			return errors.Wrap(err, "encoding submission")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, q.itemsKey, id, data)
			return nil
		})
		return err
	})
}
