package segment

import (
	"math"
)

// Partition is an optimal split of [0, n) into len(Breakpoints)+1 segments.
//
// Breakpoints are 0-based, strictly increasing and exclude 0 and n: each
// breakpoint is the first line of the segment that follows it.
type Partition struct {
	Breakpoints []int
	Cost        float64
}

// Span is a half-open line range [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns End-Start.
func (s Span) Len() int { return s.End - s.Start }

// Segments expands the breakpoints into spans covering [0, n).
func (p *Partition) Segments(n int) []Span {
	return Spans(p.Breakpoints, n)
}

// Spans expands breakpoints into spans covering [0, n).
func Spans(breakpoints []int, n int) []Span {
	out := make([]Span, 0, len(breakpoints)+1)
	start := 0
	for _, b := range breakpoints {
		out = append(out, Span{Start: start, End: b})
		start = b
	}
	return append(out, Span{Start: start, End: n})
}

// Partitioner finds minimum-cost partitions by dynamic programming over a Cost.
type Partitioner struct {
	cost Cost
	jump int
}

// NewPartitioner returns a partitioner restricting breakpoints to multiples
// of jump. jump=1 searches every position and is exact.
func NewPartitioner(cost Cost, jump int) (*Partitioner, error) {
	if cost == nil || cost.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	if jump < 1 {
		return nil, malformed("jump %d must be positive", jump)
	}
	return &Partitioner{cost: cost, jump: jump}, nil
}

// Partition returns the partition with k breakpoints minimizing total cost.
//
// D[0][e] = cost(0,e) and D[k][e] = min_t D[k-1][t] + cost(t,e) over
// candidate t with min_size <= t <= e-min_size. Ties keep the smallest t.
func (p *Partitioner) Partition(k int) (*Partition, error) {
	n := p.cost.Len()
	m := p.cost.MinSize()
	if k < 0 || (k+1)*m > n {
		return nil, p.infeasible(k)
	}
	if k == 0 {
		c, err := p.cost.Error(0, n)
		if err != nil {
			return nil, err
		}
		return &Partition{Breakpoints: []int{}, Cost: c}, nil
	}

	cands := p.candidates(n, m)
	inf := math.Inf(1)
	// dp[level][e], back[level][e] for level in [0,k]
	dp := make([][]float64, k+1)
	back := make([][]int, k+1)
	for level := range dp {
		dp[level] = make([]float64, n+1)
		back[level] = make([]int, n+1)
		for e := range dp[level] {
			dp[level][e] = inf
			back[level][e] = -1
		}
	}

	for _, e := range cands {
		c, err := p.cost.Error(0, e)
		if err != nil {
			return nil, err
		}
		dp[0][e] = c
	}

	for level := 1; level <= k; level++ {
		ends := cands
		if level == k {
			ends = []int{n}
		}
		for _, e := range ends {
			best, arg := inf, -1
			for _, t := range cands {
				if t > e-m {
					break
				}
				prev := dp[level-1][t]
				if math.IsInf(prev, 1) {
					continue
				}
				c, err := p.cost.Error(t, e)
				if err != nil {
					return nil, err
				}
				if v := prev + c; v < best {
					best, arg = v, t
				}
			}
			dp[level][e] = best
			back[level][e] = arg
		}
	}

	if back[k][n] < 0 {
		return nil, p.infeasible(k)
	}
	bkps := make([]int, k)
	e := n
	for level := k; level >= 1; level-- {
		e = back[level][e]
		bkps[level-1] = e
	}
	return &Partition{Breakpoints: bkps, Cost: dp[k][n]}, nil
}

// TotalCost sums the cost of every segment defined by breakpoints.
func TotalCost(cost Cost, breakpoints []int) (float64, error) {
	total := 0.0
	for _, s := range Spans(breakpoints, cost.Len()) {
		c, err := cost.Error(s.Start, s.End)
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}

func (p *Partitioner) candidates(n, m int) []int {
	first := m
	if r := first % p.jump; r != 0 {
		first += p.jump - r
	}
	var out []int
	for t := first; t <= n-m; t += p.jump {
		out = append(out, t)
	}
	return out
}

func (p *Partitioner) infeasible(k int) error {
	return &InfeasibleError{K: k, N: p.cost.Len(), MinSize: p.cost.MinSize(), Jump: p.jump}
}
