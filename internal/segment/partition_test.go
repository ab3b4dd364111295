package segment

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPartitioner(t *testing.T, rows [][]float64, minSize, jump int) *Partitioner {
	t.Helper()
	g, err := BuildGram(rows)
	require.NoError(t, err)
	c, err := NewCosineCost(g, minSize)
	require.NoError(t, err)
	p, err := NewPartitioner(c, jump)
	require.NoError(t, err)
	return p
}

func TestPartition_Identity(t *testing.T) {
	p := newPartitioner(t, identityRows(6), 2, 1)

	got, err := p.Partition(2)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4}, got.Breakpoints)
	assert.InDelta(t, 3.0, got.Cost, 1e-12)
}

func TestPartition_BlockDiagonal(t *testing.T) {
	p := newPartitioner(t, blockRows(3, 3), 2, 1)

	got, err := p.Partition(1)
	require.NoError(t, err)

	assert.Equal(t, []int{3}, got.Breakpoints)
	assert.InDelta(t, 0.0, got.Cost, 1e-12)
	for _, sp := range got.Segments(6) {
		c, err := p.cost.Error(sp.Start, sp.End)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, c, 1e-12)
	}
}

func TestPartition_ZeroBreakpoints(t *testing.T) {
	p := newPartitioner(t, blockRows(2, 2), 2, 1)

	got, err := p.Partition(0)
	require.NoError(t, err)

	assert.Empty(t, got.Breakpoints)
	assert.InDelta(t, 2.0, got.Cost, 1e-12)
}

func TestPartition_ValidBreakpoints(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 42))
	for n := 2; n <= 14; n++ {
		rows := randomRows(r, n, 5)
		for minSize := 1; minSize <= 3; minSize++ {
			p := newPartitioner(t, rows, minSize, 1)
			for k := 0; k <= 6; k++ {
				got, err := p.Partition(k)
				if (k+1)*minSize > n {
					var inf *InfeasibleError
					require.ErrorAs(t, err, &inf, "n=%d k=%d min=%d", n, k, minSize)
					assert.ErrorIs(t, err, ErrInfeasibleBreakpointCount)
					continue
				}
				require.NoError(t, err, "n=%d k=%d min=%d", n, k, minSize)
				require.Len(t, got.Breakpoints, k)
				prev := 0
				for _, b := range got.Breakpoints {
					assert.Greater(t, b, prev)
					assert.GreaterOrEqual(t, b, minSize)
					assert.LessOrEqual(t, b, n-minSize)
					prev = b
				}
				for _, sp := range got.Segments(n) {
					assert.GreaterOrEqual(t, sp.Len(), minSize)
				}
				total, err := TotalCost(p.cost, got.Breakpoints)
				require.NoError(t, err)
				assert.InDelta(t, total, got.Cost, 1e-9)
			}
		}
	}
}

func TestPartition_ExhaustiveOptimality(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 8))
	for trial := 0; trial < 5; trial++ {
		for n := 2; n <= 8; n++ {
			rows := randomRows(r, n, 4)
			for minSize := 1; minSize <= 2; minSize++ {
				p := newPartitioner(t, rows, minSize, 1)
				for k := 1; (k+1)*minSize <= n; k++ {
					got, err := p.Partition(k)
					require.NoError(t, err)

					best := math.Inf(1)
					combinations(1, n-1, k, func(bkps []int) {
						for _, sp := range Spans(bkps, n) {
							if sp.Len() < minSize {
								return
							}
						}
						c, err := TotalCost(p.cost, bkps)
						require.NoError(t, err)
						best = math.Min(best, c)
					})
					assert.LessOrEqual(t, got.Cost, best+1e-9, "n=%d k=%d min=%d", n, k, minSize)
				}
			}
		}
	}
}

func TestPartition_Deterministic(t *testing.T) {
	rows := randomRows(rand.New(rand.NewPCG(9, 9)), 30, 6)
	a := newPartitioner(t, rows, 2, 1)
	b := newPartitioner(t, rows, 2, 1)

	for k := 1; k <= 5; k++ {
		pa, err := a.Partition(k)
		require.NoError(t, err)
		pb, err := b.Partition(k)
		require.NoError(t, err)
		again, err := a.Partition(k)
		require.NoError(t, err)

		assert.Equal(t, pa.Breakpoints, pb.Breakpoints)
		assert.Equal(t, pa.Breakpoints, again.Breakpoints)
		assert.Equal(t, pa.Cost, again.Cost)
	}
}

func TestPartition_Jump(t *testing.T) {
	t.Run("Should place breakpoints on the jump grid", func(t *testing.T) {
		rows := randomRows(rand.New(rand.NewPCG(2, 3)), 20, 5)
		p := newPartitioner(t, rows, 1, 3)
		exact := newPartitioner(t, rows, 1, 1)

		for k := 1; k <= 4; k++ {
			got, err := p.Partition(k)
			require.NoError(t, err)
			for _, b := range got.Breakpoints {
				assert.Zero(t, b%3)
			}
			opt, err := exact.Partition(k)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.Cost, opt.Cost-1e-9)
		}
	})

	t.Run("Should fail when the grid has too few positions", func(t *testing.T) {
		p := newPartitioner(t, identityRows(6), 1, 4)
		_, err := p.Partition(2)
		assert.ErrorIs(t, err, ErrInfeasibleBreakpointCount)
	})

	t.Run("Should reject a non-positive jump", func(t *testing.T) {
		g, err := BuildGram(identityRows(3))
		require.NoError(t, err)
		c, err := NewCosineCost(g, 1)
		require.NoError(t, err)
		_, err = NewPartitioner(c, 0)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})
}

func TestPartition_Infeasible(t *testing.T) {
	p := newPartitioner(t, identityRows(5), 2, 1)

	_, err := p.Partition(2)
	var inf *InfeasibleError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, 2, inf.K)
	assert.Equal(t, 5, inf.N)

	_, err = p.Partition(-1)
	assert.ErrorIs(t, err, ErrInfeasibleBreakpointCount)
}

func TestPartition_L2Cost(t *testing.T) {
	rows := [][]float64{{0}, {0}, {0}, {5}, {5}, {5}, {5}}
	c, err := NewL2Cost(rows, 1)
	require.NoError(t, err)
	p, err := NewPartitioner(c, 1)
	require.NoError(t, err)

	got, err := p.Partition(1)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got.Breakpoints)
	assert.InDelta(t, 0.0, got.Cost, 1e-12)
}
