// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"math"

	"github.com/skyintel/skyintel/internal/models"
)

// minDecomposeDays is the shortest series worth decomposing: two full
// weekly periods.
const minDecomposeDays = 14

// Decompose splits a daily series into additive trend, weekly seasonal
// and residual components. The trend is a centered moving average
// (window shrunk at the edges), the seasonal component is the
// zero-centered mean of the detrended values per weekday position, and
// anomalies are the indices where the residual exceeds two standard
// deviations. Series shorter than 14 points return
// ErrInsufficientData.
func Decompose(points []models.TimePoint) (*models.Decomposition, error) {
	n := len(points)
	if n < minDecomposeDays {
		return nil, ErrInsufficientData
	}
	period := 7
	if period > n/2 {
		period = n / 2
	}

	d := &models.Decomposition{
		Dates:    make([]string, n),
		Observed: make([]float64, n),
		Trend:    make([]float64, n),
		Seasonal: make([]float64, n),
		Residual: make([]float64, n),
	}
	for i, p := range points {
		d.Dates[i] = p.Date
		d.Observed[i] = p.Value
	}

	half := period / 2
	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= n {
			hi = n - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += d.Observed[j]
		}
		d.Trend[i] = sum / float64(hi-lo+1)
	}

	posSum := make([]float64, period)
	posCount := make([]int, period)
	for i := 0; i < n; i++ {
		pos := i % period
		posSum[pos] += d.Observed[i] - d.Trend[i]
		posCount[pos]++
	}
	var seasonalMean float64
	seasonal := make([]float64, period)
	for p := 0; p < period; p++ {
		if posCount[p] > 0 {
			seasonal[p] = posSum[p] / float64(posCount[p])
		}
		seasonalMean += seasonal[p]
	}
	seasonalMean /= float64(period)
	for p := 0; p < period; p++ {
		seasonal[p] -= seasonalMean
	}

	var residSum, residSq float64
	for i := 0; i < n; i++ {
		d.Seasonal[i] = seasonal[i%period]
		d.Residual[i] = d.Observed[i] - d.Trend[i] - d.Seasonal[i]
		residSum += d.Residual[i]
		residSq += d.Residual[i] * d.Residual[i]
	}
	mean := residSum / float64(n)
	sigma := math.Sqrt(residSq/float64(n) - mean*mean)

	if sigma > 0 {
		for i := 0; i < n; i++ {
			if math.Abs(d.Residual[i]-mean) > 2*sigma {
				d.Anomalies = append(d.Anomalies, i)
			}
		}
	}
	return d, nil
}

// NormalizeSeries scales values into [0,1] by min-max, used for the
// overview trend sparkline. A constant series maps to all zeros.
func NormalizeSeries(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	if max == min {
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}
