package categorizer

import (
	"fmt"
	"math"
)

// Sentinel marks a matrix cell that has not been scored. It lies outside
// [0,1] so an unpopulated cell can never pass for a real score.
const Sentinel = -1.0

// SimilarityMatrix is a rows x cols table of similarity scores
type SimilarityMatrix struct {
	rows  int
	cols  int
	cells []float64
}

// NewSimilarityMatrix creates a matrix with every cell set to Sentinel
func NewSimilarityMatrix(rows, cols int) *SimilarityMatrix {
	cells := make([]float64, rows*cols)
	for i := range cells {
		cells[i] = Sentinel
	}
	return &SimilarityMatrix{rows: rows, cols: cols, cells: cells}
}

// Rows returns the number of rows
func (m *SimilarityMatrix) Rows() int { return m.rows }

// Cols returns the number of columns
func (m *SimilarityMatrix) Cols() int { return m.cols }

// At returns the score stored at (row, col), or Sentinel if it was never set
func (m *SimilarityMatrix) At(row, col int) float64 {
	return m.cells[row*m.cols+col]
}

// Populated reports whether (row, col) holds a real score
func (m *SimilarityMatrix) Populated(row, col int) bool {
	return m.At(row, col) != Sentinel
}

// Set stores score at (row, col). Scores outside [0,1] are rejected.
func (m *SimilarityMatrix) Set(row, col int, score float64) error {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return fmt.Errorf("%w: %v at (%d, %d)", ErrScoreOutOfRange, score, row, col)
	}
	m.cells[row*m.cols+col] = score
	return nil
}

// RowMax returns the first column holding the row's highest real score,
// ignoring the column skip (pass -1 to consider every column). It returns
// (-1, Sentinel) when the row has no populated cell.
func (m *SimilarityMatrix) RowMax(row, skip int) (int, float64) {
	best, bestCol := Sentinel, -1
	for col := 0; col < m.cols; col++ {
		if col == skip || !m.Populated(row, col) {
			continue
		}
		if v := m.At(row, col); v > best {
			best, bestCol = v, col
		}
	}
	return bestCol, best
}

// CheckPopulated returns ErrUnpopulatedCell if any cell is still Sentinel.
// With skipDiagonal the cells (i, i) are exempt.
func (m *SimilarityMatrix) CheckPopulated(skipDiagonal bool) error {
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			if skipDiagonal && row == col {
				continue
			}
			if !m.Populated(row, col) {
				return fmt.Errorf("%w: (%d, %d)", ErrUnpopulatedCell, row, col)
			}
		}
	}
	return nil
}
