package engine

import (
	"database/sql"
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/viant/vec/search"
	"github.com/viant/vecscore/cosine"
	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterVectorFunctions registers vec_cosine, vec_batch_cosine and vec_l2
// with the driver so they are available on new connections opened after this
// call. Registration happens once per process; existing open connections
// will not see the functions.
//
//	vec_cosine(a BLOB, b BLOB) REAL          cosine kernel on one pair
//	vec_batch_cosine(q BLOB, batch BLOB) TEXT JSON array, one score per batch item
//	vec_l2(a BLOB, b BLOB) REAL              Euclidean distance, equal lengths only
func RegisterVectorFunctions(_ *sql.DB) error {
	registerOnce.Do(func() {
		register("vec_cosine", 2, vecCosineImpl)
		register("vec_batch_cosine", 2, vecBatchCosineImpl)
		register("vec_l2", 2, vecL2Impl)
	})
	return nil
}

func register(name string, nArgs int32, fn func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error)) {
	// The driver rejects duplicate names; a failure here means another
	// package already registered the function.
	if err := sqlite.RegisterDeterministicScalarFunction(name, nArgs, fn); err != nil {
		log.Debug().Err(err).Str("function", name).Msg("engine: register scalar function")
	}
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeEmbedding(v)
	default:
		return nil, fmt.Errorf("vec: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

// pairArgs decodes two embedding arguments; ok is false when either is NULL.
func pairArgs(name string, args []driver.Value) (a, b []float32, ok bool, err error) {
	if len(args) != 2 {
		return nil, nil, false, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	if args[0] == nil || args[1] == nil {
		return nil, nil, false, nil
	}
	if a, err = asEmbedding(args[0]); err != nil {
		return nil, nil, false, fmt.Errorf("%s: %w", name, err)
	}
	if b, err = asEmbedding(args[1]); err != nil {
		return nil, nil, false, fmt.Errorf("%s: %w", name, err)
	}
	return a, b, true, nil
}

func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, ok, err := pairArgs("vec_cosine", args)
	if err != nil || !ok {
		return nil, err
	}
	return cosine.CosineSimilarity(a, b), nil
}

func vecBatchCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_batch_cosine: expected 2 arguments, got %d", len(args))
	}
	if args[0] == nil || args[1] == nil {
		return nil, nil
	}
	query, err := asEmbedding(args[0])
	if err != nil {
		return nil, fmt.Errorf("vec_batch_cosine: %w", err)
	}
	blob, ok := args[1].([]byte)
	if !ok {
		return nil, fmt.Errorf("vec_batch_cosine: unsupported batch type %T; want BLOB", args[1])
	}
	items, err := decodeBatch(blob)
	if err != nil {
		return nil, fmt.Errorf("vec_batch_cosine: %w", err)
	}
	data, err := json.Marshal(cosine.BatchCosineSimilarity(query, items))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, ok, err := pairArgs("vec_l2", args)
	if err != nil || !ok {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("vec_l2: dim mismatch %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return float64(0), nil
	}
	return float64(search.Float32s(a).EuclideanDistance(b)), nil
}

// Local minimal codecs mirroring vector.DecodeEmbedding and vector.DecodeBatch;
// vector tests import this package, so it cannot import vector.
func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vec: invalid embedding blob length %d", len(b))
	}
	return readFloats(b, len(b)/4), nil
}

func decodeBatch(b []byte) ([][]float32, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("vec: invalid batch blob length %d", len(b))
	}
	n := int(binary.LittleEndian.Uint32(b))
	off := 4
	items := make([][]float32, 0, min(n, len(b)/4))
	for i := 0; i < n; i++ {
		if off+4 > len(b) {
			return nil, fmt.Errorf("vec: truncated batch blob at item %d", i)
		}
		dim := int(binary.LittleEndian.Uint32(b[off:]))
		off += 4
		if dim > (len(b)-off)/4 {
			return nil, fmt.Errorf("vec: truncated batch blob at item %d", i)
		}
		items = append(items, readFloats(b[off:], dim))
		off += 4 * dim
	}
	if off != len(b) {
		return nil, fmt.Errorf("vec: %d trailing bytes in batch blob", len(b)-off)
	}
	return items, nil
}

func readFloats(b []byte, n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
