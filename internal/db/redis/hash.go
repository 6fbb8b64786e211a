package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/ainative-studio/publicfounders/internal/db"
)

// guardedSet writes ARGV[3..] field/value pairs only when the guard field
// (ARGV[1]) currently holds the guard value (ARGV[2]). Runs atomically on the
// server, which is what gives transitions single-writer semantics.
var guardedSet = rueidis.NewLuaScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if cur ~= ARGV[2] then return 0 end
for i = 3, #ARGV, 2 do
  redis.call('HSET', KEYS[1], ARGV[i], ARGV[i+1])
end
return 1
`)

// absentSet writes ARGV field/value pairs only when the key does not exist.
var absentSet = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 0 end
for i = 1, #ARGV, 2 do
  redis.call('HSET', KEYS[1], ARGV[i], ARGV[i+1])
end
return 1
`)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetIfFieldEquals atomically writes fields only when the guard field holds
// the expected value. Returns false when the guard did not match.
func (s *Store) HSetIfFieldEquals(
	ctx context.Context, key, guardField, guardValue string, fields map[string]string,
) (bool, error) {
	args := make([]string, 0, 2+2*len(fields))
	args = append(args, guardField, guardValue)
	for k, v := range fields {
		args = append(args, k, v)
	}

	n, err := guardedSet.Exec(ctx, s.client, []string{key}, args).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpEval, Err: err}
	}
	return n == 1, nil
}

// HSetIfAbsent atomically writes a whole record only when the key does not
// exist yet. Returns false when the key was already present.
func (s *Store) HSetIfAbsent(ctx context.Context, key string, fields map[string]string) (bool, error) {
	args := make([]string, 0, 2*len(fields))
	for k, v := range fields {
		args = append(args, k, v)
	}

	n, err := absentSet.Exec(ctx, s.client, []string{key}, args).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpEval, Err: err}
	}
	return n == 1, nil
}

// HGetAll returns all fields of a hash.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HGetAllMulti fetches all fields for multiple hashes in a single DoMulti
// round-trip.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))

	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("HGetAllMulti key %s: %w", keys[i], err)
		}
		out[i] = m
	}

	return out, nil
}

// Del deletes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	count, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}
