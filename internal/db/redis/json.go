package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/oriole-ai/oriole/internal/db"
)

// JSONMGet batch-fetches JSON documents at the root path. The returned
// slice is aligned with keys; a key without a document yields nil.
func (s *Store) JSONMGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmd := s.b().Arbitrary("JSON.MGET").Keys(keys...).Args("$").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONMGet, Err: err}
	}

	docs := make([][]byte, len(keys))
	for i := range raw {
		if i >= len(keys) {
			break
		}
		str, err := raw[i].ToString()
		if err != nil || str == "" {
			// rueidis returns a nil message for absent keys
			if !rueidis.IsRedisNil(err) && err != nil {
				return nil, &db.Error{Op: db.OpJSONMGet, Err: err}
			}
			continue
		}
		docs[i] = []byte(str)
	}

	return docs, nil
}
