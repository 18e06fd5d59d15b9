// Package neural provides the fixed-topology feedforward networks that drive agents.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrBadTopology is returned when layer sizes or weights cannot form a network.
var ErrBadTopology = errors.New("bad network topology")

// Network is a bias-free feedforward network with sigmoid activations.
// Matrix shapes are fixed at construction; only weight values change.
type Network struct {
	sizes   []int
	weights []*mat.Dense // weights[i] is sizes[i+1] x sizes[i]
}

// MutationConfig controls Mutate.
type MutationConfig struct {
	Rate           float64 // probability each weight is perturbed
	Magnitude      float64 // perturbation drawn from U[-Magnitude, Magnitude]
	FirstLayerOnly bool    // leave every matrix past the first untouched
}

// NewNetwork creates a network with standard-normal weights.
func NewNetwork(rng *rand.Rand, sizes []int) (*Network, error) {
	if err := checkSizes(sizes); err != nil {
		return nil, err
	}

	n := &Network{sizes: append([]int(nil), sizes...)}
	for i := 1; i < len(sizes); i++ {
		rows, cols := sizes[i], sizes[i-1]
		data := make([]float64, rows*cols)
		for j := range data {
			data[j] = rng.NormFloat64()
		}
		n.weights = append(n.weights, mat.NewDense(rows, cols, data))
	}
	return n, nil
}

// NewNetworkFromWeights builds a network from row-major weight slices, one per layer.
// The slices are copied.
func NewNetworkFromWeights(sizes []int, weights [][]float64) (*Network, error) {
	if err := checkSizes(sizes); err != nil {
		return nil, err
	}
	if len(weights) != len(sizes)-1 {
		return nil, fmt.Errorf("%w: %d weight layers for %d sizes", ErrBadTopology, len(weights), len(sizes))
	}

	n := &Network{sizes: append([]int(nil), sizes...)}
	for i, w := range weights {
		rows, cols := sizes[i+1], sizes[i]
		if len(w) != rows*cols {
			return nil, fmt.Errorf("%w: layer %d has %d weights, want %d", ErrBadTopology, i, len(w), rows*cols)
		}
		n.weights = append(n.weights, mat.NewDense(rows, cols, append([]float64(nil), w...)))
	}
	return n, nil
}

func checkSizes(sizes []int) error {
	if len(sizes) < 2 {
		return fmt.Errorf("%w: need at least input and output sizes, got %v", ErrBadTopology, sizes)
	}
	for _, s := range sizes {
		if s <= 0 {
			return fmt.Errorf("%w: non-positive layer size in %v", ErrBadTopology, sizes)
		}
	}
	return nil
}

// Sizes returns a copy of the layer sizes.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// Inputs returns the input width.
func (n *Network) Inputs() int {
	return n.sizes[0]
}

// Feedforward applies sigmoid(W·a) layer by layer.
// Panics if len(input) does not match the input width.
func (n *Network) Feedforward(input []float64) []float64 {
	if len(input) != n.sizes[0] {
		panic(fmt.Sprintf("neural: input width %d, want %d", len(input), n.sizes[0]))
	}

	a := mat.NewVecDense(len(input), append([]float64(nil), input...))
	for _, w := range n.weights {
		rows, _ := w.Dims()
		z := mat.NewVecDense(rows, nil)
		z.MulVec(w, a)
		for i := 0; i < rows; i++ {
			z.SetVec(i, Sigmoid(z.AtVec(i)))
		}
		a = z
	}

	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.AtVec(i)
	}
	return out
}

// Mutate perturbs weights in place. Each eligible weight changes with probability
// cfg.Rate by a value drawn uniformly from [-cfg.Magnitude, cfg.Magnitude].
func (n *Network) Mutate(rng *rand.Rand, cfg MutationConfig) {
	layers := n.weights
	if cfg.FirstLayerOnly {
		layers = layers[:1]
	}

	for _, w := range layers {
		rows, cols := w.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if rng.Float64() < cfg.Rate {
					w.Set(i, j, w.At(i, j)+(rng.Float64()*2-1)*cfg.Magnitude)
				}
			}
		}
	}
}

// Clone creates a deep copy of the network.
func (n *Network) Clone() *Network {
	c := &Network{sizes: append([]int(nil), n.sizes...)}
	for _, w := range n.weights {
		c.weights = append(c.weights, mat.DenseCopyOf(w))
	}
	return c
}

// Weights returns a row-major copy of every weight matrix.
func (n *Network) Weights() [][]float64 {
	out := make([][]float64, len(n.weights))
	for k, w := range n.weights {
		rows, cols := w.Dims()
		flat := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				flat = append(flat, w.At(i, j))
			}
		}
		out[k] = flat
	}
	return out
}

// Sigmoid is the logistic function, clamped one ulp inside (0,1) so saturated
// inputs never reach the bounds.
func Sigmoid(z float64) float64 {
	y := 1.0 / (1.0 + math.Exp(-z))
	if y >= 1 {
		return math.Nextafter(1, 0)
	}
	if y <= 0 {
		return math.SmallestNonzeroFloat64
	}
	return y
}
