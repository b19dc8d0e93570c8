package framesched

import (
	"math"
	"slices"
)

// quantileEstimator estimates a single quantile of a stream of observations,
// in constant space, using the P-Square algorithm.
//
// Reference:
// Jain, R. and Chlamtac, I. (1985). "The P² Algorithm for Dynamic Calculation
// of Quantiles and Histograms Without Storing Observations". Communications
// of the ACM, 28(10), pp. 1076-1085.
//
// NOT safe for concurrent use.
type quantileEstimator struct {
	// marker heights, the first 5 observations until initialized
	heights [5]float64
	// actual marker positions
	pos [5]int
	// desired marker positions, and their per-observation increments
	want [5]float64
	step [5]float64
	p    float64
	n    int
}

func newQuantileEstimator(p float64) quantileEstimator {
	p = math.Min(math.Max(p, 0), 1)
	return quantileEstimator{
		p:    p,
		step: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

func (e *quantileEstimator) add(x float64) {
	if e.n < 5 {
		e.heights[e.n] = x
		e.n++
		if e.n == 5 {
			slices.Sort(e.heights[:])
			for i := range e.pos {
				e.pos[i] = i
			}
			e.want = [5]float64{0, 2 * e.p, 4 * e.p, 2 + 2*e.p, 4}
		}
		return
	}
	e.n++

	// cell k, such that heights[k] <= x < heights[k+1]
	var k int
	switch {
	case x < e.heights[0]:
		e.heights[0] = x
	case x >= e.heights[4]:
		e.heights[4] = x
		k = 3
	default:
		for k < 3 && x >= e.heights[k+1] {
			k++
		}
	}

	for i := k + 1; i < 5; i++ {
		e.pos[i]++
	}
	for i := range e.want {
		e.want[i] += e.step[i]
	}

	for i := 1; i < 4; i++ {
		d := e.want[i] - float64(e.pos[i])
		if (d >= 1 && e.pos[i+1]-e.pos[i] > 1) || (d <= -1 && e.pos[i-1]-e.pos[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			if h := e.parabolic(i, sign); e.heights[i-1] < h && h < e.heights[i+1] {
				e.heights[i] = h
			} else {
				e.heights[i] = e.linear(i, sign)
			}
			e.pos[i] += sign
		}
	}
}

func (e *quantileEstimator) parabolic(i, sign int) float64 {
	d := float64(sign)
	n0, n1, n2 := float64(e.pos[i-1]), float64(e.pos[i]), float64(e.pos[i+1])
	return e.heights[i] + d/(n2-n0)*
		((n1-n0+d)*(e.heights[i+1]-e.heights[i])/(n2-n1)+
			(n2-n1-d)*(e.heights[i]-e.heights[i-1])/(n1-n0))
}

func (e *quantileEstimator) linear(i, sign int) float64 {
	j := i + sign
	return e.heights[i] + float64(sign)*(e.heights[j]-e.heights[i])/float64(e.pos[j]-e.pos[i])
}

// value returns the current estimate, falling back to the nearest rank of
// the buffered observations, until there are enough to run the algorithm.
func (e *quantileEstimator) value() float64 {
	switch {
	case e.n == 0:
		return 0
	case e.n < 5:
		var buf [5]float64
		s := buf[:e.n]
		copy(s, e.heights[:e.n])
		slices.Sort(s)
		return s[int(float64(e.n-1)*e.p)]
	default:
		return e.heights[2]
	}
}
