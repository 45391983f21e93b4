package arena

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

type Statistics struct {
	WinningFraction float64
	EloDifference   float64
	// ErrorMargin is the half width of the 95% confidence interval of EloDifference.
	ErrorMargin float64
	// LOS is the likelihood of superiority of engine A.
	LOS float64
}

// https://www.chessprogramming.org/Match_Statistics
func (s Summary) Stat() Statistics {
	if s.Games == 0 {
		return Statistics{LOS: 0.5}
	}
	var mean, stdDev = stat.MeanStdDev(
		[]float64{1, 0.5, 0},
		[]float64{float64(s.WinsA), float64(s.Draws), float64(s.WinsB)})
	var result = Statistics{
		WinningFraction: mean,
		EloDifference:   eloDifference(mean),
		LOS:             0.5,
	}
	if decisive := s.WinsA + s.WinsB; decisive > 0 {
		result.LOS = distuv.UnitNormal.CDF(float64(s.WinsA-s.WinsB) / math.Sqrt(float64(decisive)))
	}
	if s.Games > 1 {
		var margin = distuv.UnitNormal.Quantile(0.975) * stdDev / math.Sqrt(float64(s.Games))
		if mean-margin <= 0 || mean+margin >= 1 {
			result.ErrorMargin = math.Inf(1)
		} else {
			result.ErrorMargin = (eloDifference(mean+margin) - eloDifference(mean-margin)) / 2
		}
	}
	return result
}

func eloDifference(winningFraction float64) float64 {
	return -math.Log(1/winningFraction-1) * 400 / math.Ln10
}
