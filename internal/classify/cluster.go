// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/gap-engine/pkg/types"
)

const (
	clusterCount    = 3
	maxVocabTerms   = 100
	kmeansMaxIter   = 50
	labelTermCount  = 3
	minTokenLength  = 3
	minClusterInput = 3
)

// kmeansSeed fixes the k-means++ initialization so clustering is
// reproducible for a given batch.
const kmeansSeed = 1

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "with": true,
	"this": true, "that": true, "from": true, "was": true, "were": true,
	"has": true, "have": true, "been": true, "can": true, "which": true,
	"these": true, "their": true, "our": true, "its": true, "than": true,
	"into": true, "over": true, "such": true, "between": true, "both": true,
	"using": true, "used": true, "use": true, "based": true, "show": true,
	"shown": true, "results": true, "result": true, "study": true,
	"studies": true, "paper": true, "present": true, "propose": true,
	"proposed": true, "also": true, "here": true, "not": true, "but": true,
	"may": true, "more": true, "most": true, "other": true, "however": true,
	"data": true, "approach": true, "method": true, "methods": true,
	"new": true, "two": true, "three": true, "one": true, "all": true,
}

// Cluster assigns each document a semantic cluster id in {0,1,2} and
// derives a top-terms label per cluster.
//
// Fewer than three documents with usable text short-circuits to the
// deterministic index-mod-3 assignment. Otherwise the corpus is
// tokenized, TF-IDF weighted, projected onto the top-K global terms
// (K = min(100, 2*docCount)), and clustered with k-means (k=3,
// k-means++ init, bounded iterations). Documents without usable text
// are assigned post hoc to the largest cluster. Any numerical failure
// falls back to round-robin assignment for the entire batch and logs;
// clustering never aborts the pipeline.
func Cluster(docs []types.Document, w io.Writer) ([]int, [3]string) {
	if w == nil {
		w = io.Discard
	}

	tokenized := make([][]string, len(docs))
	usable := 0
	for i, doc := range docs {
		if doc.HasUsableText() {
			tokenized[i] = tokenize(doc.Title + " " + doc.Abstract)
		}
		if len(tokenized[i]) > 0 {
			usable++
		}
	}

	if usable < minClusterInput {
		fmt.Fprintf(w, "cluster: only %d documents with usable text, assigning index mod 3\n", usable)
		return roundRobin(len(docs)), fallbackLabels()
	}

	assignments, labels, err := clusterCorpus(docs, tokenized)
	if err != nil {
		fmt.Fprintf(w, "warning: clustering failed (%v), falling back to round-robin\n", err)
		return roundRobin(len(docs)), fallbackLabels()
	}
	return assignments, labels
}

func roundRobin(n int) []int {
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = i % clusterCount
	}
	return assignments
}

func fallbackLabels() [3]string {
	return [3]string{"cluster a", "cluster b", "cluster c"}
}

func clusterCorpus(docs []types.Document, tokenized [][]string) ([]int, [3]string, error) {
	vocab := selectVocabulary(tokenized)
	if len(vocab) == 0 {
		return nil, [3]string{}, fmt.Errorf("empty vocabulary")
	}

	idf := inverseDocFrequency(tokenized, vocab)

	// One dense vector per document with usable text.
	var vectors [][]float64
	var vectorDoc []int // vector index → document index
	for i, tokens := range tokenized {
		if len(tokens) == 0 {
			continue
		}
		vec := vectorize(tokens, vocab, idf)
		if !finite(vec) {
			return nil, [3]string{}, fmt.Errorf("non-finite vector for document %d", i)
		}
		vectors = append(vectors, vec)
		vectorDoc = append(vectorDoc, i)
	}

	memberships, err := kmeans(vectors, clusterCount)
	if err != nil {
		return nil, [3]string{}, err
	}

	assignments := make([]int, len(docs))
	for i := range assignments {
		assignments[i] = -1
	}
	sizes := [clusterCount]int{}
	for vi, cluster := range memberships {
		assignments[vectorDoc[vi]] = cluster
		sizes[cluster]++
	}

	// Documents without usable text join the largest cluster.
	largest := 0
	for c := 1; c < clusterCount; c++ {
		if sizes[c] > sizes[largest] {
			largest = c
		}
	}
	for i := range assignments {
		if assignments[i] < 0 {
			assignments[i] = largest
		}
	}

	return assignments, clusterLabels(tokenized, assignments), nil
}

// tokenize splits text into lowercase alphanumeric tokens, dropping stop
// words and very short tokens.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, word := range words {
		if len(word) < minTokenLength || stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// selectVocabulary picks the top-K terms by summed TF-IDF weight across
// the corpus. Ties break lexicographically so the vocabulary is
// deterministic.
func selectVocabulary(tokenized [][]string) map[string]int {
	docCount := 0
	df := make(map[string]int)
	tfSum := make(map[string]float64)

	for _, tokens := range tokenized {
		if len(tokens) == 0 {
			continue
		}
		docCount++

		counts := make(map[string]int)
		for _, tok := range tokens {
			counts[tok]++
		}
		for term, count := range counts {
			df[term]++
			tfSum[term] += float64(count) / float64(len(tokens))
		}
	}

	type termWeight struct {
		term   string
		weight float64
	}
	weights := make([]termWeight, 0, len(df))
	for term, freq := range df {
		idf := math.Log(float64(docCount)/float64(1+freq)) + 1
		weights = append(weights, termWeight{term: term, weight: tfSum[term] * idf})
	}

	sort.Slice(weights, func(i, j int) bool {
		if weights[i].weight != weights[j].weight {
			return weights[i].weight > weights[j].weight
		}
		return weights[i].term < weights[j].term
	})

	k := maxVocabTerms
	if limit := 2 * docCount; limit < k {
		k = limit
	}
	if k > len(weights) {
		k = len(weights)
	}

	vocab := make(map[string]int, k)
	for i := 0; i < k; i++ {
		vocab[weights[i].term] = i
	}
	return vocab
}

func inverseDocFrequency(tokenized [][]string, vocab map[string]int) []float64 {
	docCount := 0
	df := make([]int, len(vocab))
	for _, tokens := range tokenized {
		if len(tokens) == 0 {
			continue
		}
		docCount++
		seen := make(map[int]bool)
		for _, tok := range tokens {
			if dim, ok := vocab[tok]; ok && !seen[dim] {
				seen[dim] = true
				df[dim]++
			}
		}
	}

	idf := make([]float64, len(vocab))
	for dim, freq := range df {
		idf[dim] = math.Log(float64(docCount)/float64(1+freq)) + 1
	}
	return idf
}

func vectorize(tokens []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(vocab))
	for _, tok := range tokens {
		if dim, ok := vocab[tok]; ok {
			vec[dim] += idf[dim] / float64(len(tokens))
		}
	}
	return vec
}

func finite(vec []float64) bool {
	for _, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// kmeans clusters vectors into k groups with k-means++ initialization
// and a bounded iteration count. Returns one cluster id per vector.
func kmeans(vectors [][]float64, k int) ([]int, error) {
	if len(vectors) < k {
		return nil, fmt.Errorf("%d vectors for %d clusters", len(vectors), k)
	}

	rng := rand.New(rand.NewSource(kmeansSeed))
	centroids := seedCentroids(vectors, k, rng)

	assignments := make([]int, len(vectors))
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, vec := range vectors {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := squaredDistance(vec, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; an emptied cluster is reseeded from the
		// point farthest from its centroid.
		dims := len(vectors[0])
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, vec := range vectors {
			c := assignments[i]
			counts[c]++
			for d, v := range vec {
				sums[c][d] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				centroids[c] = vectors[farthestPoint(vectors, centroids, assignments)]
				continue
			}
			for d := range sums[c] {
				sums[c][d] /= float64(counts[c])
				if math.IsNaN(sums[c][d]) || math.IsInf(sums[c][d], 0) {
					return nil, fmt.Errorf("non-finite centroid component")
				}
			}
			centroids[c] = sums[c]
		}
	}
	return assignments, nil
}

// seedCentroids implements k-means++: the first centroid is random, each
// later one is drawn weighted by squared distance to the nearest chosen
// centroid.
func seedCentroids(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, vectors[rng.Intn(len(vectors))])

	for len(centroids) < k {
		dists := make([]float64, len(vectors))
		total := 0.0
		for i, vec := range vectors {
			nearest := math.Inf(1)
			for _, centroid := range centroids {
				if d := squaredDistance(vec, centroid); d < nearest {
					nearest = d
				}
			}
			dists[i] = nearest
			total += nearest
		}

		if total == 0 {
			// All points coincide with chosen centroids; pick uniformly.
			centroids = append(centroids, vectors[rng.Intn(len(vectors))])
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(vectors) - 1
		for i, d := range dists {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, vectors[chosen])
	}
	return centroids
}

func farthestPoint(vectors, centroids [][]float64, assignments []int) int {
	farthest, maxDist := 0, -1.0
	for i, vec := range vectors {
		d := squaredDistance(vec, centroids[assignments[i]])
		if d > maxDist {
			farthest, maxDist = i, d
		}
	}
	return farthest
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// clusterLabels re-runs a mini TF-IDF over each cluster's documents and
// takes its top terms as the label.
func clusterLabels(tokenized [][]string, assignments []int) [3]string {
	var labels [3]string
	for c := 0; c < clusterCount; c++ {
		var members [][]string
		for i, tokens := range tokenized {
			if assignments[i] == c && len(tokens) > 0 {
				members = append(members, tokens)
			}
		}
		labels[c] = topTermsLabel(members)
	}
	return labels
}

func topTermsLabel(members [][]string) string {
	if len(members) == 0 {
		return "empty"
	}

	df := make(map[string]int)
	tfSum := make(map[string]float64)
	for _, tokens := range members {
		counts := make(map[string]int)
		for _, tok := range tokens {
			counts[tok]++
		}
		for term, count := range counts {
			df[term]++
			tfSum[term] += float64(count) / float64(len(tokens))
		}
	}

	type termWeight struct {
		term   string
		weight float64
	}
	weights := make([]termWeight, 0, len(df))
	for term, freq := range df {
		idf := math.Log(float64(len(members))/float64(1+freq)) + 1
		weights = append(weights, termWeight{term: term, weight: tfSum[term] * idf})
	}
	sort.Slice(weights, func(i, j int) bool {
		if weights[i].weight != weights[j].weight {
			return weights[i].weight > weights[j].weight
		}
		return weights[i].term < weights[j].term
	})

	n := labelTermCount
	if n > len(weights) {
		n = len(weights)
	}
	terms := make([]string, n)
	for i := 0; i < n; i++ {
		terms[i] = weights[i].term
	}
	return strings.Join(terms, " / ")
}
