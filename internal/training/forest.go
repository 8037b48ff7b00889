package training

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/inference"

	"golang.org/x/sync/errgroup"
)

// ForestOptions controls the bagged regression forest
type ForestOptions struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	Seed     int64
	// Workers bounds parallel tree fitting; 0 uses GOMAXPROCS
	Workers int
}

// DefaultForestOptions returns the production settings
func DefaultForestOptions() ForestOptions {
	return ForestOptions{
		Trees:    100,
		MaxDepth: 16,
		MinLeaf:  1,
		Seed:     42,
	}
}

// FitForest fits one CART regression tree per bootstrap sample of (x, y).
// Tree t draws its sample from seed+t, so results do not depend on scheduling.
func FitForest(ctx context.Context, x [][]float64, y []float64, opts ForestOptions) (*inference.Forest, error) {
	if len(x) == 0 {
		return nil, ErrNoTrainingRows
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%d rows but %d targets", len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return nil, fmt.Errorf("rows have no features")
	}
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
	}
	if opts.Trees <= 0 {
		return nil, fmt.Errorf("forest needs at least one tree, got %d", opts.Trees)
	}
	if opts.MinLeaf < 1 {
		opts.MinLeaf = 1
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = math.MaxInt32
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]inference.Tree, opts.Trees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := 0; t < opts.Trees; t++ {
		t := t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(opts.Seed + int64(t)))
			sample := make([]int, len(x))
			for i := range sample {
				sample[i] = rng.Intn(len(x))
			}
			trees[t] = fitTree(x, y, sample, opts.MaxDepth, opts.MinLeaf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &inference.Forest{NFeatures: width, Trees: trees}, nil
}

type treeBuilder struct {
	x        [][]float64
	y        []float64
	maxDepth int
	minLeaf  int
	nodes    []inference.Node
}

func fitTree(x [][]float64, y []float64, sample []int, maxDepth, minLeaf int) inference.Tree {
	b := &treeBuilder{x: x, y: y, maxDepth: maxDepth, minLeaf: minLeaf}
	b.grow(sample, 0)
	return inference.Tree{Nodes: b.nodes}
}

// grow appends the subtree for idx in preorder and returns its root index,
// so children always follow their parent.
func (b *treeBuilder) grow(idx []int, depth int) int {
	pos := len(b.nodes)
	b.nodes = append(b.nodes, inference.Node{Feature: -1, Value: b.mean(idx)})

	if depth >= b.maxDepth || len(idx) < 2*b.minLeaf {
		return pos
	}
	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return pos
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[pos] = inference.Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return pos
}

func (b *treeBuilder) mean(idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	return sum / float64(len(idx))
}

// bestSplit finds the split that most reduces squared error. ok is false
// when no split improves on the parent.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	var total float64
	for _, i := range idx {
		total += b.y[i]
	}
	// Maximizing sumL²/nL + sumR²/nR minimizes the children's squared error
	best := total * total / float64(n)
	const eps = 1e-9

	order := make([]int, n)
	for f := 0; f < len(b.x[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool { return b.x[order[a]][f] < b.x[order[c]][f] })

		var sumLeft float64
		for k := 1; k < n; k++ {
			sumLeft += b.y[order[k-1]]
			lo, hi := b.x[order[k-1]][f], b.x[order[k]][f]
			if lo == hi || k < b.minLeaf || n-k < b.minLeaf {
				continue
			}
			sumRight := total - sumLeft
			score := sumLeft*sumLeft/float64(k) + sumRight*sumRight/float64(n-k)
			if score > best+eps*math.Abs(best) {
				best = score
				feature = f
				threshold = lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}
