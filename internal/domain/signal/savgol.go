package signal

// Savitzky-Golay smoothing. Interior points are smoothed by convolving with
// precomputed least-squares coefficients; the first and last half-windows
// are filled by fitting a polynomial to the edge window and evaluating it
// at the uncovered positions (the "interp" edge mode).

// SavitzkyGolay smooths sig with a least-squares polynomial filter of the
// given odd window length and polynomial order. A window longer than the
// signal degrades to a copy of the input; invalid window/order combinations
// error.
func SavitzkyGolay(sig []float64, window, poly int) ([]float64, error) {
	if window < 3 || window%2 == 0 {
		return nil, ErrBadWindow
	}
	if poly < 0 || poly >= window {
		return nil, ErrBadOrder
	}
	out := make([]float64, len(sig))
	copy(out, sig)
	if len(sig) < window {
		return out, nil
	}

	half := window / 2
	coeffs := centralCoeffs(window, poly)
	for i := half; i < len(sig)-half; i++ {
		var acc float64
		for j, c := range coeffs {
			acc += c * sig[i-half+j]
		}
		out[i] = acc
	}

	// Edge fit: polynomial over the first/last window evaluated at the
	// positions the convolution cannot reach.
	head := polyFit(sig[:window], poly)
	for i := 0; i < half; i++ {
		out[i] = polyEval(head, float64(i))
	}
	tail := polyFit(sig[len(sig)-window:], poly)
	for i := 0; i < half; i++ {
		out[len(sig)-half+i] = polyEval(tail, float64(window-half+i))
	}
	return out, nil
}

// centralCoeffs returns the convolution weights that evaluate the
// least-squares polynomial fit at the window center.
func centralCoeffs(window, poly int) []float64 {
	half := window / 2
	// Normal equations: (AᵀA) s = Aᵀ y with A[i][j] = x_i^j, x centered on
	// the window. The smoothed center value is s[0], which makes each
	// output a fixed linear combination of the window's y values.
	ata := make([][]float64, poly+1)
	for r := range ata {
		ata[r] = make([]float64, poly+1)
		for c := range ata[r] {
			var sum float64
			for x := -half; x <= half; x++ {
				sum += intPow(float64(x), r+c)
			}
			ata[r][c] = sum
		}
	}
	inv0 := invertRow0(ata)
	coeffs := make([]float64, window)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		var acc float64
		for j := 0; j <= poly; j++ {
			acc += inv0[j] * intPow(x, j)
		}
		coeffs[i] = acc
	}
	return coeffs
}

// polyFit performs an unweighted least-squares polynomial fit of y sampled
// at x = 0..len(y)-1, returning coefficients with the constant term first.
func polyFit(y []float64, order int) []float64 {
	n := order + 1
	ata := make([][]float64, n)
	atb := make([]float64, n)
	for r := 0; r < n; r++ {
		ata[r] = make([]float64, n)
		for c := 0; c < n; c++ {
			var sum float64
			for x := range y {
				sum += intPow(float64(x), r+c)
			}
			ata[r][c] = sum
		}
		for x := range y {
			atb[r] += intPow(float64(x), r) * y[x]
		}
	}
	return solveLinear(ata, atb)
}

// polyEval evaluates the polynomial at x via Horner's rule.
func polyEval(coeffs []float64, x float64) float64 {
	var acc float64
	for j := len(coeffs) - 1; j >= 0; j-- {
		acc = acc*x + coeffs[j]
	}
	return acc
}

// invertRow0 returns the first row of the inverse of a, via Gauss-Jordan
// on the augmented identity. Matrices here are tiny ((poly+1)², poly ≤ 5).
func invertRow0(a [][]float64) []float64 {
	n := len(a)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], a[i])
		aug[i][n+i] = 1
	}
	gaussJordan(aug)
	out := make([]float64, n)
	copy(out, aug[0][n:])
	return out
}

// solveLinear solves a·x = b for small n.
func solveLinear(a [][]float64, b []float64) []float64 {
	n := len(a)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, n+1)
		copy(aug[i], a[i])
		aug[i][n] = b[i]
	}
	gaussJordan(aug)
	out := make([]float64, n)
	for i := range out {
		out[i] = aug[i][n]
	}
	return out
}

// gaussJordan reduces the augmented matrix to reduced row echelon form with
// partial pivoting.
func gaussJordan(aug [][]float64) {
	n := len(aug)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(aug[r][col]) > abs(aug[pivot][col]) {
				pivot = r
			}
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		pv := aug[col][col]
		if pv == 0 {
			continue
		}
		for c := range aug[col] {
			aug[col][c] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col || aug[r][col] == 0 {
				continue
			}
			f := aug[r][col]
			for c := range aug[r] {
				aug[r][c] -= f * aug[col][c]
			}
		}
	}
}

func intPow(x float64, p int) float64 {
	out := 1.0
	for i := 0; i < p; i++ {
		out *= x
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
