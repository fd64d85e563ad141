// Package featcache caches per-series feature vectors keyed on the series
// data and the extraction parameters.
//
// A key is the xxhash of the raw values plus every parameter that changes
// the result, so a changed input never hits a stale entry:
//
//	key := featcache.Key(values, "period=24", "fill=0", "method=stl")
//	if v, ok, _ := store.Get(ctx, key); ok {
//	    return v
//	}
//
// Entries are JSON encoded and snappy compressed in both backends.
package featcache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"

	"github.com/sartorproj/featurespace/errs"
)

// Cache types accepted by Open.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
)

// Store is a feature vector cache.
type Store interface {
	Get(ctx context.Context, key string) (map[string]float64, bool, error)
	Put(ctx context.Context, key string, vector map[string]float64) error
	Close() error
}

// Open returns the store for kind. TypeNone and "" return a nil Store.
func Open(kind, path string, maxEntries int) (Store, error) {
	switch strings.ToLower(kind) {
	case "", TypeNone:
		return nil, nil
	case TypeMemory:
		return NewMemory(maxEntries), nil
	case TypeSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errs.InvalidParameter("unknown cache type %q", kind)
}

// Key hashes values and params into a cache key.
func Key(values []float64, params ...string) string {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(values)))
	_, _ = d.Write(buf[:])
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	for _, p := range params {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(p)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

func encode(vector map[string]float64) ([]byte, error) {
	raw, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("encode feature vector: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

func decode(data []byte) (map[string]float64, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decompress feature vector: %w", err)
	}
	var vector map[string]float64
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, fmt.Errorf("decode feature vector: %w", err)
	}
	return vector, nil
}
