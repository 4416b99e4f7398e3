package stepper

import (
	"errors"

	"github.com/lmachina/reachkit/petri"
)

// ErrIndexOutOfBounds mirrors matrix.Dense's own sentinel (matrix/dense.go),
// raised on an out-of-range place index.
var ErrIndexOutOfBounds = errors.New("stepper: place index out of bounds")

// ConcurrentMatrix is the lower-triangular {0,1} reachability-pairs matrix
// of spec.md §3: entry (i,j) for i>=j is true iff some reachable marking has
// both place i and place j simultaneously positive; the diagonal is true by
// convention (self-concurrency). Storage is a single flat []bool sized
// n*(n+1)/2, in matrix.Dense's flat-slice-plus-indexOf style
// (matrix/dense.go's NewDense/indexOf) rather than a map[[2]int]bool.
type ConcurrentMatrix struct {
	n    int
	data []bool
}

// NewConcurrentMatrix allocates an n x n lower-triangular matrix, all false,
// diagonal seeded true per spec.md §3's "diagonal is 1 by convention".
func NewConcurrentMatrix(n int) *ConcurrentMatrix {
	m := &ConcurrentMatrix{n: n, data: make([]bool, n*(n+1)/2)}
	for i := 0; i < n; i++ {
		m.set(i, i, true)
	}
	return m
}

// N returns the matrix's dimension (the net's place count).
func (m *ConcurrentMatrix) N() int { return m.n }

// index computes the flat offset for (row,col), normalizing to row>=col
// since the matrix is symmetric and only the lower triangle is stored.
func (m *ConcurrentMatrix) index(row, col int) (int, error) {
	if row < col {
		row, col = col, row
	}
	if row < 0 || row >= m.n || col < 0 || col > row {
		return 0, ErrIndexOutOfBounds
	}
	return row*(row+1)/2 + col, nil
}

func (m *ConcurrentMatrix) set(row, col int, v bool) {
	idx, err := m.index(row, col)
	if err != nil {
		return
	}
	m.data[idx] = v
}

// Get reports whether places i and j are known concurrent.
func (m *ConcurrentMatrix) Get(i, j int) bool {
	idx, err := m.index(i, j)
	if err != nil {
		return false
	}
	return m.data[idx]
}

// Set marks places i and j concurrent.
func (m *ConcurrentMatrix) Set(i, j int) { m.set(i, j, true) }

// MarkPositive sets every pair of places simultaneously positive in marking
// as concurrent (spec.md §4.8's seeding and stepping updates).
func (m *ConcurrentMatrix) MarkPositive(marking petri.Marking) {
	var positive []int
	for i, v := range marking {
		if v > 0 {
			positive = append(positive, i)
		}
	}
	for a := 0; a < len(positive); a++ {
		for b := a; b < len(positive); b++ {
			m.Set(positive[a], positive[b])
		}
	}
}

// UnmarkedPairs returns every pair {i, j} with i>j not yet known concurrent.
func (m *ConcurrentMatrix) UnmarkedPairs() [][2]int {
	var out [][2]int
	for i := 0; i < m.n; i++ {
		for j := 0; j < i; j++ {
			if !m.Get(i, j) {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// Complete reports whether every pair is known concurrent.
func (m *ConcurrentMatrix) Complete() bool {
	return len(m.UnmarkedPairs()) == 0
}
