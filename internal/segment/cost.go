package segment

// DefaultMinSize is the minimum segment length used when none is configured.
const DefaultMinSize = 2

// Cost scores contiguous half-open ranges [start, end) of a fitted signal.
// Implementations must be safe for concurrent reads once constructed.
type Cost interface {
	// Len returns the number of lines the cost was fitted on.
	Len() int
	// MinSize returns the shortest segment Error accepts.
	MinSize() int
	// Error returns the cost of [start, end). It fails with ErrNotEnoughPoints
	// when end-start < MinSize.
	Error(start, end int) (float64, error)
}

// CostModel fits a Cost on a matrix of line vectors.
type CostModel interface {
	Name() string
	Fit(rows [][]float64) (Cost, error)
}

// MinSizeFitter is a CostModel that accepts the minimum segment length at fit
// time instead of carrying its own.
type MinSizeFitter interface {
	CostModel
	FitMinSize(rows [][]float64, minSize int) (Cost, error)
}

// CosineCost is the kernel scatter of a segment under cosine similarity:
//
//	cost(s,e) = Σ G[i][i] - (Σ Σ G[i][j]) / (e-s),  i,j ∈ [s,e)
//
// Both sums are answered from prefix tables built once, so Error is O(1).
type CosineCost struct {
	gram    *GramMatrix
	minSize int
	// diag[i] = Σ_{a<i} G[a][a]
	diag []float64
	// block[i*(n+1)+j] = Σ_{a<i, b<j} G[a][b]
	block []float64
}

// NewCosineCost builds the prefix tables for g.
func NewCosineCost(g *GramMatrix, minSize int) (*CosineCost, error) {
	if g == nil || g.n == 0 {
		return nil, ErrEmptyCorpus
	}
	if minSize < 1 {
		return nil, malformed("min size %d must be positive", minSize)
	}
	n := g.n
	w := n + 1
	c := &CosineCost{
		gram:    g,
		minSize: minSize,
		diag:    make([]float64, w),
		block:   make([]float64, w*w),
	}
	for i := 0; i < n; i++ {
		c.diag[i+1] = c.diag[i] + g.At(i, i)
		row := 0.0
		for j := 0; j < n; j++ {
			row += g.At(i, j)
			c.block[(i+1)*w+j+1] = c.block[i*w+j+1] + row
		}
	}
	return c, nil
}

// Gram returns the similarity matrix the cost was built from.
func (c *CosineCost) Gram() *GramMatrix { return c.gram }

func (c *CosineCost) Len() int { return c.gram.n }

func (c *CosineCost) MinSize() int { return c.minSize }

func (c *CosineCost) Error(start, end int) (float64, error) {
	if err := checkRange(start, end, c.gram.n, c.minSize); err != nil {
		return 0, err
	}
	w := c.gram.n + 1
	trace := c.diag[end] - c.diag[start]
	sum := c.block[end*w+end] - c.block[start*w+end] - c.block[end*w+start] + c.block[start*w+start]
	return trace - sum/float64(end-start), nil
}

// CosineModel fits a CosineCost.
type CosineModel struct {
	MinSize int
}

func (CosineModel) Name() string { return "cosine" }

func (m CosineModel) Fit(rows [][]float64) (Cost, error) {
	return m.FitMinSize(rows, orDefault(m.MinSize))
}

func (CosineModel) FitMinSize(rows [][]float64, minSize int) (Cost, error) {
	g, err := BuildGram(rows)
	if err != nil {
		return nil, err
	}
	return NewCosineCost(g, minSize)
}

// L2Cost is the sum of squared deviations from the segment mean:
//
//	cost(s,e) = Σ ||x_i||² - ||Σ x_i||² / (e-s)
//
// Queries are O(d) from per-feature prefix sums.
type L2Cost struct {
	n, d    int
	minSize int
	sq      []float64
	// sums[i*d+f] = Σ_{a<i} x_a[f]
	sums []float64
}

// NewL2Cost builds the prefix tables for rows.
func NewL2Cost(rows [][]float64, minSize int) (*L2Cost, error) {
	n := len(rows)
	if n == 0 {
		return nil, ErrEmptyCorpus
	}
	if err := validateRows(rows); err != nil {
		return nil, err
	}
	if minSize < 1 {
		return nil, malformed("min size %d must be positive", minSize)
	}
	d := len(rows[0])
	c := &L2Cost{
		n:       n,
		d:       d,
		minSize: minSize,
		sq:      make([]float64, n+1),
		sums:    make([]float64, (n+1)*d),
	}
	for i, r := range rows {
		c.sq[i+1] = c.sq[i] + dot(r, r)
		for f, v := range r {
			c.sums[(i+1)*d+f] = c.sums[i*d+f] + v
		}
	}
	return c, nil
}

func (c *L2Cost) Len() int { return c.n }

func (c *L2Cost) MinSize() int { return c.minSize }

func (c *L2Cost) Error(start, end int) (float64, error) {
	if err := checkRange(start, end, c.n, c.minSize); err != nil {
		return 0, err
	}
	norm := 0.0
	for f := 0; f < c.d; f++ {
		s := c.sums[end*c.d+f] - c.sums[start*c.d+f]
		norm += s * s
	}
	return c.sq[end] - c.sq[start] - norm/float64(end-start), nil
}

// L2Model fits an L2Cost.
type L2Model struct {
	MinSize int
}

func (L2Model) Name() string { return "l2" }

func (m L2Model) Fit(rows [][]float64) (Cost, error) {
	return NewL2Cost(rows, orDefault(m.MinSize))
}

func (L2Model) FitMinSize(rows [][]float64, minSize int) (Cost, error) {
	return NewL2Cost(rows, minSize)
}

func checkRange(start, end, n, minSize int) error {
	if start < 0 || end > n || start > end {
		return malformed("segment [%d,%d) outside [0,%d)", start, end, n)
	}
	if end-start < minSize {
		return &NotEnoughPointsError{Start: start, End: end, MinSize: minSize}
	}
	return nil
}

func orDefault(minSize int) int {
	if minSize <= 0 {
		return DefaultMinSize
	}
	return minSize
}
