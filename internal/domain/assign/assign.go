// Package assign solves the minimum-cost assignment problem over a
// rectangular cost matrix using the Hungarian method (shortest augmenting
// path with potentials, O(n³)).
//
// The solver is deterministic: when several columns tie on cost, the lowest
// column index wins, so repeated calls on unchanged input are reproducible.
package assign

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Assignment pairs one row (mentee) with one column (mentor) at the cost
// read from the input matrix.
type Assignment struct {
	Row  int
	Col  int
	Cost float64
}

// Solve computes the minimum-total-cost one-to-one assignment for cost.
// Every row is matched to at most one column and vice versa; with an M×N
// matrix, min(M, N) assignments are produced and the surplus side stays
// unmatched. A matrix with zero rows or columns is a validation error.
func Solve(cost mat.Matrix) ([]Assignment, error) {
	rows, cols := cost.Dims()
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyMatrix
	}

	// The augmenting-path core needs rows <= cols; transpose when the
	// mentee side is the larger one and swap indices back afterwards.
	transposed := rows > cols
	work := cost
	if transposed {
		work = cost.T()
		rows, cols = cols, rows
	}

	rowByCol := solveRect(work, rows, cols)

	assignments := make([]Assignment, 0, rows)
	for col := 1; col <= cols; col++ {
		row := rowByCol[col]
		if row == 0 {
			continue
		}
		a := Assignment{Row: row - 1, Col: col - 1}
		if transposed {
			a.Row, a.Col = a.Col, a.Row
		}
		a.Cost = cost.At(a.Row, a.Col)
		assignments = append(assignments, a)
	}

	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Row < assignments[j].Row
	})
	return assignments, nil
}

// solveRect runs the potentials-based Hungarian algorithm on an n×m matrix
// with n <= m, using 1-based bookkeeping internally. The returned slice maps
// each column to its assigned row (0 = unassigned).
func solveRect(cost mat.Matrix, n, m int) []int {
	const inf = 1e18

	u := make([]float64, n+1) // row potentials
	v := make([]float64, m+1) // column potentials
	rowByCol := make([]int, m+1)
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		rowByCol[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		used := make([]bool, m+1)
		for j := range minv {
			minv[j] = inf
		}

		// Grow the alternating tree until a free column is found.
		for {
			used[j0] = true
			i0 := rowByCol[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := cost.At(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[rowByCol[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if rowByCol[j0] == 0 {
				break
			}
		}

		// Flip the augmenting path.
		for j0 != 0 {
			j1 := way[j0]
			rowByCol[j0] = rowByCol[j1]
			j0 = j1
		}
	}

	return rowByCol
}
