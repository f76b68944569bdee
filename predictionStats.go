//
// Code related to column prediction stats
//

package htm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cznic/mathutil"
	"github.com/gonum/floats"
	"github.com/htm-community/streamhtm/utils"
)

/*
Running scores of how well the columns predicted on one step matched the
columns that became active on the next. Steps up to BurnIn since the last
reset only update the Cur fields.
*/
type PredictionStats struct {
	BurnIn int

	NInfersSinceReset       int
	NPredictions            int
	PredictionScoreTotal    float64
	FalseNegativeScoreTotal float64
	FalsePositiveScoreTotal float64
	PctExtraTotal           float64
	PctMissingTotal         float64
	TotalMissing            float64
	TotalExtra              float64

	CurPredictionScore    float64
	CurFalseNegativeScore float64
	CurFalsePositiveScore float64
	CurMissing            float64
	CurExtra              float64
}

func (s *PredictionStats) ToString() string {
	var sb strings.Builder
	sb.WriteString("Stats: \n")
	fmt.Fprintf(&sb, "nInferSinceReset %v \n", s.NInfersSinceReset)
	fmt.Fprintf(&sb, "nPredictions %v \n", s.NPredictions)
	fmt.Fprintf(&sb, "PredictionScoreTotal %v \n", s.PredictionScoreTotal)
	fmt.Fprintf(&sb, "FalseNegativeScoreTotal %v \n", s.FalseNegativeScoreTotal)
	fmt.Fprintf(&sb, "FalsePositiveScoreTotal %v \n", s.FalsePositiveScoreTotal)
	fmt.Fprintf(&sb, "PctExtraTotal %v \n", s.PctExtraTotal)
	fmt.Fprintf(&sb, "PctMissingTotal %v \n", s.PctMissingTotal)
	fmt.Fprintf(&sb, "TotalMissing %v \n", s.TotalMissing)
	fmt.Fprintf(&sb, "TotalExtra %v \n", s.TotalExtra)
	fmt.Fprintf(&sb, "CurPredictionScore %v \n", s.CurPredictionScore)
	fmt.Fprintf(&sb, "CurFalseNegativeScore %v \n", s.CurFalseNegativeScore)
	fmt.Fprintf(&sb, "CurFalsePositiveScore %v \n", s.CurFalsePositiveScore)
	fmt.Fprintf(&sb, "CurMissing %v \n", s.CurMissing)
	fmt.Fprintf(&sb, "CurExtra %v \n", s.CurExtra)
	return sb.String()
}

//Average prediction score over the steps past burn-in
func (s *PredictionStats) AvgPredictionScore() float64 {
	if s.NPredictions == 0 {
		return 0
	}
	return s.PredictionScoreTotal / float64(s.NPredictions)
}

//Starts a new sequence, accumulated totals are kept
func (s *PredictionStats) Reset() {
	s.NInfersSinceReset = 0
}

type confidence struct {
	PredictionScore         float64
	PositivePredictionScore float64
	NegativePredictionScore float64
}

/*
 Produces goodness-of-match scores for a set of column patterns by checking
them against a set of predicted columns. colConfidence holds one confidence
per column, zero for columns that were not predicted.

Returns the number of predicted columns absent from every pattern (extras),
the number of pattern columns that were not predicted (missing), one
confidence per pattern and, with details, the missing pattern columns.
*/
func checkPrediction(patternNZs [][]int, predictedColumns []int,
	colConfidence []float64, details bool) (int, int, []confidence, []int) {

	// Compute the union of all the expected patterns
	var orAll []int
	for _, row := range patternNZs {
		orAll = utils.Union(orAll, row)
	}

	outputIdxs := append([]int(nil), predictedColumns...)
	sort.Ints(outputIdxs)

	totalExtras := 0
	totalMissing := 0
	for _, val := range outputIdxs {
		if !utils.SortedContainsInt(val, orAll) {
			totalExtras++
		}
	}
	for _, val := range orAll {
		if !utils.SortedContainsInt(val, outputIdxs) {
			totalMissing++
		}
	}

	totalPredictionSum := floats.Sum(colConfidence)
	totalColumnCount := len(colConfidence)

	confidences := make([]confidence, 0, len(patternNZs))
	for _, pattern := range patternNZs {
		positivePredictionSum := floats.Sum(utils.SubsetSliceFloat64(colConfidence, pattern))
		positiveColumnCount := len(pattern)

		negativePredictionSum := totalPredictionSum - positivePredictionSum
		negativeColumnCount := totalColumnCount - positiveColumnCount

		positivePredictionScore := 0.0
		if positiveColumnCount != 0 {
			positivePredictionScore = positivePredictionSum
		}
		negativePredictionScore := 0.0
		if negativeColumnCount != 0 {
			negativePredictionScore = negativePredictionSum
		}

		// Scale the positive and negative prediction scores so that they sum to 1.0
		currentSum := negativePredictionScore + positivePredictionScore
		if currentSum > 0 {
			positivePredictionScore *= 1.0 / currentSum
			negativePredictionScore *= 1.0 / currentSum
		}

		confidences = append(confidences, confidence{
			PredictionScore:         positivePredictionScore - negativePredictionScore,
			PositivePredictionScore: positivePredictionScore,
			NegativePredictionScore: negativePredictionScore,
		})
	}

	if !details {
		return totalExtras, totalMissing, confidences, nil
	}

	var missingPatternBits []int
	for _, val := range orAll {
		if !utils.SortedContainsInt(val, outputIdxs) {
			missingPatternBits = append(missingPatternBits, val)
		}
	}
	return totalExtras, totalMissing, confidences, missingPatternBits
}

/*
 Called after each compute with the active columns and the prediction made
on the previous step, updating the current and accumulated scores.
*/
func (s *PredictionStats) update(bottomUpNZ []int, predictedColumns []int, colConfidence []float64) {
	s.NInfersSinceReset++

	numExtra, numMissing, confidences, _ := checkPrediction([][]int{bottomUpNZ},
		predictedColumns, colConfidence, false)
	predictionScore := confidences[0].PredictionScore
	positivePredictionScore := confidences[0].PositivePredictionScore
	negativePredictionScore := confidences[0].NegativePredictionScore

	// Store the stats that don't depend on burn-in
	s.CurPredictionScore = predictionScore
	s.CurFalseNegativeScore = negativePredictionScore
	s.CurFalsePositiveScore = positivePredictionScore
	s.CurMissing = float64(numMissing)
	s.CurExtra = float64(numExtra)

	// 0: score the first element of each sequence and all subsequent
	// 1: score from the second element on, etc.
	if s.NInfersSinceReset <= s.BurnIn {
		return
	}

	s.NPredictions++
	numExpected := mathutil.Max(1, len(bottomUpNZ))

	s.TotalMissing += float64(numMissing)
	s.TotalExtra += float64(numExtra)
	s.PctExtraTotal += 100.0 * float64(numExtra) / float64(numExpected)
	s.PctMissingTotal += 100.0 * float64(numMissing) / float64(numExpected)
	s.PredictionScoreTotal += predictionScore
	s.FalseNegativeScoreTotal += 1.0 - positivePredictionScore
	s.FalsePositiveScoreTotal += negativePredictionScore
}

/*
 Per column confidence of the current prediction: the fraction of the
column's cells that are predictive.
*/
func (tm *TemporalMemory) ColumnConfidence() []float64 {
	result := make([]float64, tm.NumberOfColumns())
	for _, col := range tm.predictiveCells.NonZeroRows() {
		result[col] = float64(len(tm.predictiveCells.GetRowIndices(col))) / float64(tm.CellsPerColumn)
	}
	return result
}
