package bandit

import (
	"math"

	"github.com/rotisserie/eris"
)

// Small dense linear algebra for the d=4 ridge design matrices. The
// matrices stay well conditioned (identity plus rank-one updates), so
// Gauss-Jordan with partial pivoting is sufficient.

func identity(d int) [][]float64 {
	m := make([][]float64, d)
	for i := range m {
		m[i] = make([]float64, d)
		m[i][i] = 1
	}
	return m
}

func zeros(d int) []float64 {
	return make([]float64, d)
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// addOuter adds x·xᵗ to m in place.
func addOuter(m [][]float64, x []float64) {
	for i := range x {
		for j := range x {
			m[i][j] += x[i] * x[j]
		}
	}
}

// addScaled adds r·x to v in place.
func addScaled(v, x []float64, r float64) {
	for i := range v {
		v[i] += r * x[i]
	}
}

func matVec(m [][]float64, x []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = dot(row, x)
	}
	return out
}

// quadForm computes xᵗ·m·x.
func quadForm(m [][]float64, x []float64) float64 {
	return dot(x, matVec(m, x))
}

// invert returns the inverse of m via Gauss-Jordan elimination with
// partial pivoting.
func invert(m [][]float64) ([][]float64, error) {
	d := len(m)

	// Augment a copy of m with the identity.
	work := make([][]float64, d)
	for i := range work {
		work[i] = make([]float64, 2*d)
		copy(work[i], m[i])
		work[i][d+i] = 1
	}

	for col := 0; col < d; col++ {
		// Pivot on the largest magnitude entry in this column.
		pivot := col
		for row := col + 1; row < d; row++ {
			if math.Abs(work[row][col]) > math.Abs(work[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(work[pivot][col]) < 1e-12 {
			return nil, eris.New("bandit: singular design matrix")
		}
		work[col], work[pivot] = work[pivot], work[col]

		scale := work[col][col]
		for j := 0; j < 2*d; j++ {
			work[col][j] /= scale
		}
		for row := 0; row < d; row++ {
			if row == col {
				continue
			}
			factor := work[row][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < 2*d; j++ {
				work[row][j] -= factor * work[col][j]
			}
		}
	}

	inv := make([][]float64, d)
	for i := range inv {
		inv[i] = make([]float64, d)
		copy(inv[i], work[i][d:])
	}
	return inv, nil
}
