package wavelet

import (
	"math"
	"math/cmplx"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// MaxOrder is the highest supported Daubechies order.
const MaxOrder = 20

// Wavelet is an orthogonal wavelet described by its four filters. Values
// returned by Lookup are shared and must not be modified.
type Wavelet struct {
	Name  string
	Order int

	DecLo []float64
	DecHi []float64
	RecLo []float64
	RecHi []float64

	// decomposition filters reversed for dot-product convolution
	decLoRev []float64
	decHiRev []float64
	// reconstruction taps split by output parity, reversed
	recLoEven, recLoOdd []float64
	recHiEven, recHiOdd []float64
}

// FilterLength returns the number of taps of each filter.
func (w *Wavelet) FilterLength() int {
	return len(w.DecLo)
}

var (
	cacheMu sync.Mutex
	cache   = map[int]*Wavelet{}
)

// Lookup resolves a wavelet by name: "haar" or "db1" through "db20".
func Lookup(name string) (*Wavelet, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "haar" {
		return Daubechies(1)
	}
	if !strings.HasPrefix(key, "db") {
		return nil, serrors.Wrapf(serrors.ErrUnknownWavelet, "%q", name)
	}
	order, err := strconv.Atoi(key[2:])
	if err != nil || order < 1 || order > MaxOrder {
		return nil, serrors.Wrapf(serrors.ErrUnknownWavelet, "%q: supported orders are db1..db%d", name, MaxOrder)
	}
	return Daubechies(order)
}

// Daubechies returns the Daubechies wavelet with the given number of
// vanishing moments. Its filters have 2*order taps.
func Daubechies(order int) (*Wavelet, error) {
	if order < 1 || order > MaxOrder {
		return nil, serrors.Wrapf(serrors.ErrUnknownWavelet, "db%d", order)
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if w, ok := cache[order]; ok {
		return w, nil
	}

	recLo, err := daubechiesScaling(order)
	if err != nil {
		return nil, err
	}
	w := newOrthogonal("db"+strconv.Itoa(order), order, recLo)
	cache[order] = w
	return w, nil
}

// newOrthogonal derives the filter bank from the reconstruction low-pass
// filter.
func newOrthogonal(name string, order int, recLo []float64) *Wavelet {
	f := len(recLo)
	decLo := reversed(recLo)
	recHi := make([]float64, f)
	for k := range f {
		recHi[k] = decLo[k]
		if k%2 == 1 {
			recHi[k] = -decLo[k]
		}
	}
	decHi := reversed(recHi)

	w := &Wavelet{
		Name:     name,
		Order:    order,
		DecLo:    decLo,
		DecHi:    decHi,
		RecLo:    recLo,
		RecHi:    recHi,
		decLoRev: reversed(decLo),
		decHiRev: reversed(decHi),
	}
	w.recLoEven, w.recLoOdd = splitParity(recLo)
	w.recHiEven, w.recHiOdd = splitParity(recHi)
	return w
}

// splitParity returns the even and odd taps of f, each in reverse order, so
// that reconstruction is a sliding dot product over the coefficients.
func splitParity(f []float64) (even, odd []float64) {
	h := len(f) / 2
	even = make([]float64, h)
	odd = make([]float64, h)
	for t := range h {
		even[t] = f[2*(h-1-t)]
		odd[t] = f[2*(h-1-t)+1]
	}
	return even, odd
}

func reversed(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}

// daubechiesScaling computes the scaling filter of order n by spectral
// factorisation. With y = sin^2(w/2) the squared magnitude response is
// cos^2N(w/2) * P(y), P(y) = sum_k C(N-1+k, k) y^k. Each root of P maps to a
// pair z, 1/z of z^2 - (2-4y)z + 1; keeping the roots inside the unit circle
// gives the minimum-phase filter.
func daubechiesScaling(n int) ([]float64, error) {
	ys, err := halfBandRoots(n)
	if err != nil {
		return nil, err
	}

	poly := []complex128{1}
	for _, y := range ys {
		b := 2 - 4*y
		disc := cmplx.Sqrt(b*b - 4)
		outer := (b + disc) / 2
		if alt := (b - disc) / 2; cmplx.Abs(alt) > cmplx.Abs(outer) {
			outer = alt
		}
		poly = mulRoot(poly, 1/outer)
	}
	for range n {
		poly = mulRoot(poly, -1)
	}

	h := make([]float64, len(poly))
	sum := 0.0
	for i, c := range poly {
		h[i] = real(c)
		sum += h[i]
	}
	if sum == 0 || math.IsNaN(sum) {
		return nil, serrors.NewNumericalInstabilityError("wavelet.Daubechies", h, -1)
	}
	norm := math.Sqrt2 / sum
	for i := range h {
		h[i] *= norm
	}
	return h, nil
}

// halfBandRoots returns the roots of P(y) = sum_{k<n} C(n-1+k, k) y^k as the
// eigenvalues of its companion matrix.
func halfBandRoots(n int) ([]complex128, error) {
	m := n - 1
	if m == 0 {
		return nil, nil
	}

	coef := make([]float64, n)
	for k := range n {
		coef[k] = binomial(n-1+k, k)
	}
	lead := coef[m]

	companion := mat.NewDense(m, m, nil)
	for j := range m {
		companion.Set(0, j, -coef[m-1-j]/lead)
	}
	for i := 1; i < m; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil, serrors.Newf("wavelet: eigen decomposition failed for db%d", n)
	}
	return eig.Values(nil), nil
}

// mulRoot multiplies a polynomial (descending powers) by (z - r).
func mulRoot(p []complex128, r complex128) []complex128 {
	out := make([]complex128, len(p)+1)
	copy(out, p)
	for i := 1; i < len(out); i++ {
		out[i] -= r * p[i-1]
	}
	return out
}

func binomial(n, k int) float64 {
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}
