// Package index stores embedded policy chunks and serves nearest-neighbor
// retrieval. An Index is immutable once built; the Manager swaps whole
// indexes atomically so a rebuild is never observable half-done.
package index

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve"

	"github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"
)

// Embedder turns texts into fixed-length vectors, deterministically for
// identical input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

const rrfK = 60 // reciprocal-rank-fusion constant

// Index holds the embedded corpus. Read-only after Build.
type Index struct {
	embedder Embedder
	chunks   []chunker.Chunk
	vectors  [][]float32
	keyword  bleve.Index // nil unless hybrid retrieval is enabled
}

// Build embeds every chunk once and constructs a fresh index. With hybrid
// enabled the chunks are additionally indexed into an in-memory BM25 index
// whose ranking is fused with the vector ranking at search time.
func Build(ctx context.Context, embedder Embedder, chunks []chunker.Chunk, hybrid bool, logger *log.Logger) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ix := &Index{embedder: embedder, chunks: chunks, vectors: vectors}

	if hybrid {
		kw, err := bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("keyword index: %w", err)
		}
		for i, c := range chunks {
			if err := kw.Index(strconv.Itoa(i), c); err != nil {
				return nil, fmt.Errorf("keyword index chunk %d: %w", i, err)
			}
		}
		ix.keyword = kw
	}

	if logger != nil {
		logger.Printf("index built: %d chunks, hybrid=%v", len(chunks), hybrid)
	}
	return ix, nil
}

// Search embeds the query and returns the k nearest chunks by cosine
// similarity, ties broken by insertion order. With hybrid enabled the vector
// ranking is fused with a BM25 ranking via reciprocal-rank fusion.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]chunker.Chunk, error) {
	if k <= 0 {
		k = 5
	}
	vecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	vectorRanked := ix.rankByCosine(vecs[0])
	if ix.keyword == nil {
		return ix.take(vectorRanked, k), nil
	}

	keywordRanked, err := ix.rankByKeyword(query, k)
	if err != nil {
		return nil, err
	}
	return ix.take(fuseRRF(vectorRanked, keywordRanked), k), nil
}

// Size reports how many chunks the index holds.
func (ix *Index) Size() int { return len(ix.chunks) }

type ranked struct {
	ordinal int
	score   float64
}

func (ix *Index) rankByCosine(q []float32) []ranked {
	out := make([]ranked, len(ix.vectors))
	for i, v := range ix.vectors {
		out[i] = ranked{ordinal: i, score: cosine(q, v)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].ordinal < out[j].ordinal
	})
	return out
}

func (ix *Index) rankByKeyword(query string, k int) ([]ranked, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, k*3, 0, false)
	res, err := ix.keyword.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	out := make([]ranked, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ordinal, err := strconv.Atoi(hit.ID)
		if err != nil || ordinal < 0 || ordinal >= len(ix.chunks) {
			continue
		}
		out = append(out, ranked{ordinal: ordinal, score: hit.Score})
	}
	return out, nil
}

func fuseRRF(a, b []ranked) []ranked {
	fused := map[int]float64{}
	add := func(list []ranked) {
		for rank, r := range list {
			fused[r.ordinal] += 1.0 / float64(rrfK+rank+1)
		}
	}
	add(a)
	add(b)

	out := make([]ranked, 0, len(fused))
	for ordinal, score := range fused {
		out = append(out, ranked{ordinal: ordinal, score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].ordinal < out[j].ordinal
	})
	return out
}

func (ix *Index) take(rankings []ranked, k int) []chunker.Chunk {
	if k > len(rankings) {
		k = len(rankings)
	}
	out := make([]chunker.Chunk, 0, k)
	for _, r := range rankings[:k] {
		out = append(out, ix.chunks[r.ordinal])
	}
	return out
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
