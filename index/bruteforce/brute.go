package bruteforce

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/viant/vecscore/cosine"
	"github.com/viant/vecscore/index"
)

// magic prefixes the binary format; the version allows per-item dimensions.
var magic = [4]byte{'B', 'F', '2', 0}

// Index is a brute-force vector index ranked by cosine similarity.
type Index struct {
	ids  []string
	vecs [][]float32
	opts []cosine.Option
}

// New returns an empty index that scores with the given kernel options.
func New(opts ...cosine.Option) *Index {
	return &Index{opts: opts}
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return len(i.ids) }

// Build loads ids and vectors. Vectors are retained, not copied.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("bruteforce: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		i.ids, i.vecs = nil, nil
		return nil
	}
	i.ids = append([]string(nil), ids...)
	i.vecs = append([][]float32(nil), vectors...)
	return nil
}

// Query returns top-k ids by cosine similarity. Entries with equal scores
// keep build order.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if len(i.vecs) == 0 {
		return nil, nil, nil
	}
	scores := cosine.BatchCosineSimilarity(query, i.vecs, i.opts...)
	order := make([]int, len(scores))
	for n := range order {
		order[n] = n
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if k <= 0 || k > len(order) {
		k = len(order)
	}
	outIDs := make([]string, k)
	outScores := make([]float64, k)
	for n := 0; n < k; n++ {
		outIDs[n] = i.ids[order[n]]
		outScores[n] = scores[order[n]]
	}
	log.Debug().Int("size", len(i.vecs)).Int("k", k).Msg("bruteforce: query")
	return outIDs, outScores, nil
}

// MarshalBinary stores: magic, n(uint32), then for each item:
// idLen(uint32), id bytes, dim(uint32), vec(float32[dim]).
func (i *Index) MarshalBinary() ([]byte, error) {
	size := 8
	for n, id := range i.ids {
		size += 8 + len(id) + 4*len(i.vecs[n])
	}
	out := make([]byte, 0, size)
	out = append(out, magic[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(i.ids)))
	for n, id := range i.ids {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(id)))
		out = append(out, id...)
		vec := i.vecs[n]
		out = binary.LittleEndian.AppendUint32(out, uint32(len(vec)))
		for _, v := range vec {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes produced by MarshalBinary.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < 8 || [4]byte(data[:4]) != magic {
		return errors.New("bruteforce: invalid data")
	}
	off := 4
	getU32 := func() uint32 { v := binary.LittleEndian.Uint32(data[off : off+4]); off += 4; return v }
	n := int(getU32())
	ids := make([]string, 0, min(n, len(data)/8))
	vecs := make([][]float32, 0, min(n, len(data)/8))
	for idx := 0; idx < n; idx++ {
		if off+4 > len(data) {
			return errors.New("bruteforce: truncated")
		}
		idlen := int(getU32())
		if idlen > len(data)-off {
			return errors.New("bruteforce: truncated id")
		}
		ids = append(ids, string(data[off:off+idlen]))
		off += idlen
		if off+4 > len(data) {
			return errors.New("bruteforce: truncated")
		}
		dim := int(getU32())
		if dim > (len(data)-off)/4 {
			return errors.New("bruteforce: truncated vec")
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(getU32())
		}
		vecs = append(vecs, vec)
	}
	if off != len(data) {
		return fmt.Errorf("bruteforce: %d trailing bytes", len(data)-off)
	}
	return i.Build(ids, vecs)
}

var _ index.Index = (*Index)(nil)
