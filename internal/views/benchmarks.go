package views

import (
	"context"
	"sort"

	"claimsportal/domain/claim"
	"claimsportal/internal/errors"

	"golang.org/x/sync/errgroup"
)

// BenchmarkSource serves the market analytics endpoints
type BenchmarkSource interface {
	Ranking(ctx context.Context) ([]claim.InsurerRanking, error)
	Similarity(ctx context.Context) ([]claim.InsurerSimilarity, error)
}

// Benchmarks is the market comparison shown to insurers
type Benchmarks struct {
	Ranking    []claim.InsurerRanking
	Similarity []claim.InsurerSimilarity
}

const (
	topRanking    = 10
	topSimilarity = 5
)

// FetchBenchmarks loads ranking and similarity concurrently. Either failure fails the whole fetch.
func FetchBenchmarks(ctx context.Context, src BenchmarkSource) (*Benchmarks, error) {
	var b Benchmarks
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := src.Ranking(gctx)
		if err != nil {
			return err
		}
		b.Ranking = TopRanking(rows, topRanking)
		return nil
	})
	g.Go(func() error {
		rows, err := src.Similarity(gctx)
		if err != nil {
			return err
		}
		b.Similarity = TopSimilar(rows, topSimilarity)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to load benchmarks")
	}
	return &b, nil
}

// TopRanking returns the first n rows in backend order
func TopRanking(rows []claim.InsurerRanking, n int) []claim.InsurerRanking {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// TopSimilar returns the n most similar pairs. The backend already sorts by score;
// a stable sort keeps its order for ties.
func TopSimilar(rows []claim.InsurerSimilarity, n int) []claim.InsurerSimilarity {
	out := append([]claim.InsurerSimilarity(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SimilarityScore > out[j].SimilarityScore })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RiskBand labels a risk score
func RiskBand(score float64) string {
	switch {
	case score > 50:
		return "High"
	case score > 20:
		return "Medium"
	default:
		return "Low"
	}
}

// RiskVariant is the badge style for a risk score
func RiskVariant(score float64) string {
	switch RiskBand(score) {
	case "High":
		return "danger"
	case "Medium":
		return "warning"
	default:
		return "success"
	}
}
