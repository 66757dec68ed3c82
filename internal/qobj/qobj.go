package qobj

import (
	"errors"
	"fmt"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/cmplxs"
)

// ErrDimensionMismatch indicates objects over incompatible Hilbert spaces.
var ErrDimensionMismatch = errors.New("qobj: dimension mismatch")

type kind int

const (
	oper kind = iota
	ket
	bra
)

type Qobj struct {
	kind kind
	dims []int
	rows int
	cols int
	data []complex128
}

func prod(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// NewOperator wraps a row-major d×d matrix where d is the product of dims.
// data is used directly, not copied.
func NewOperator(dims []int, data []complex128) *Qobj {
	n := prod(dims)
	if len(data) != n*n {
		panic(fmt.Errorf("%w: operator data %d, want %d", ErrDimensionMismatch, len(data), n*n))
	}
	return &Qobj{dims: append([]int(nil), dims...), rows: n, cols: n, data: data}
}

// NewKet wraps a column vector of length prod(dims).
func NewKet(dims []int, data []complex128) *Qobj {
	n := prod(dims)
	if len(data) != n {
		panic(fmt.Errorf("%w: ket data %d, want %d", ErrDimensionMismatch, len(data), n))
	}
	return &Qobj{kind: ket, dims: append([]int(nil), dims...), rows: n, cols: 1, data: data}
}

func (q *Qobj) Dims() []int { return append([]int(nil), q.dims...) }

func (q *Qobj) Shape() (rows, cols int) { return q.rows, q.cols }

// N is the Hilbert-space dimension.
func (q *Qobj) N() int { return q.rows }

func (q *Qobj) IsKet() bool  { return q.kind == ket }
func (q *Qobj) IsBra() bool  { return q.kind == bra }
func (q *Qobj) IsOper() bool { return q.kind == oper }

// Raw exposes the backing row-major slice. Callers must not modify it.
func (q *Qobj) Raw() []complex128 { return q.data }

func (q *Qobj) At(i, j int) complex128 { return q.data[i*q.cols+j] }

func (q *Qobj) Clone() *Qobj {
	return &Qobj{
		kind: q.kind,
		dims: append([]int(nil), q.dims...),
		rows: q.rows,
		cols: q.cols,
		data: append([]complex128(nil), q.data...),
	}
}

// SameSpace reports whether q and b have identical dims and shape.
func (q *Qobj) SameSpace(b *Qobj) bool {
	if q.kind != b.kind || q.rows != b.rows || q.cols != b.cols || len(q.dims) != len(b.dims) {
		return false
	}
	for i := range q.dims {
		if q.dims[i] != b.dims[i] {
			return false
		}
	}
	return true
}

func (q *Qobj) mustMatch(b *Qobj) {
	if !q.SameSpace(b) {
		panic(fmt.Errorf("%w: dims %v (%dx%d) vs %v (%dx%d)",
			ErrDimensionMismatch, q.dims, q.rows, q.cols, b.dims, b.rows, b.cols))
	}
}

// HasDims reports whether q's subsystem dims equal dims, regardless of kind.
func (q *Qobj) HasDims(dims []int) bool { return sameDims(q.dims, dims) }

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (q *Qobj) Dag() *Qobj {
	k := q.kind
	switch k {
	case ket:
		k = bra
	case bra:
		k = ket
	}
	out := &Qobj{kind: k, dims: append([]int(nil), q.dims...), rows: q.cols, cols: q.rows, data: make([]complex128, len(q.data))}
	for i := 0; i < q.rows; i++ {
		for j := 0; j < q.cols; j++ {
			out.data[j*out.cols+i] = cmplx.Conj(q.data[i*q.cols+j])
		}
	}
	return out
}

func (q *Qobj) Add(b *Qobj) *Qobj {
	q.mustMatch(b)
	out := q.Clone()
	cmplxs.Add(out.data, b.data)
	return out
}

func (q *Qobj) Sub(b *Qobj) *Qobj {
	q.mustMatch(b)
	out := q.Clone()
	cmplxs.Sub(out.data, b.data)
	return out
}

func (q *Qobj) Scale(c complex128) *Qobj {
	out := q.Clone()
	cmplxs.Scale(c, out.data)
	return out
}

func (q *Qobj) Neg() *Qobj { return q.Scale(-1) }

// Mul returns the matrix product q·b.
func (q *Qobj) Mul(b *Qobj) *Qobj {
	if q.cols != b.rows || !sameDims(q.dims, b.dims) {
		panic(fmt.Errorf("%w: cannot multiply %dx%d %v by %dx%d %v",
			ErrDimensionMismatch, q.rows, q.cols, q.dims, b.rows, b.cols, b.dims))
	}
	rk := oper
	switch {
	case q.kind == oper && b.kind == ket:
		rk = ket
	case q.kind == bra && b.kind == oper:
		rk = bra
	}
	out := &Qobj{kind: rk, dims: append([]int(nil), q.dims...), rows: q.rows, cols: b.cols, data: make([]complex128, q.rows*b.cols)}
	for i := 0; i < q.rows; i++ {
		row := out.data[i*out.cols : (i+1)*out.cols]
		for k := 0; k < q.cols; k++ {
			a := q.data[i*q.cols+k]
			if a == 0 {
				continue
			}
			cmplxs.AddScaled(row, a, b.data[k*b.cols:(k+1)*b.cols])
		}
	}
	return out
}

// MulVecTo computes dst = alpha·q·x + dst for an operator q and vector x.
func (q *Qobj) MulVecTo(dst []complex128, alpha complex128, x []complex128) {
	if q.cols != len(x) || q.rows != len(dst) {
		panic(fmt.Errorf("%w: %dx%d operator on vector %d", ErrDimensionMismatch, q.rows, q.cols, len(x)))
	}
	for i := 0; i < q.rows; i++ {
		var s complex128
		row := q.data[i*q.cols : (i+1)*q.cols]
		for j, a := range row {
			if a != 0 {
				s += a * x[j]
			}
		}
		dst[i] += alpha * s
	}
}

// MulMatTo computes dst = alpha·q·m + dst where m and dst are row-major
// d×d matrices and q is d×d.
func (q *Qobj) MulMatTo(dst []complex128, alpha complex128, m []complex128) {
	n := q.rows
	if len(m) != n*n || len(dst) != n*n || q.cols != n {
		panic(fmt.Errorf("%w: %dx%d operator on matrix %d", ErrDimensionMismatch, q.rows, q.cols, len(m)))
	}
	for i := 0; i < n; i++ {
		row := dst[i*n : (i+1)*n]
		for k := 0; k < n; k++ {
			a := q.data[i*n+k]
			if a == 0 {
				continue
			}
			cmplxs.AddScaled(row, alpha*a, m[k*n:(k+1)*n])
		}
	}
}

// MatMulTo computes dst = alpha·m·q + dst where m and dst are row-major d×d.
func (q *Qobj) MatMulTo(dst []complex128, alpha complex128, m []complex128) {
	n := q.rows
	if len(m) != n*n || len(dst) != n*n || q.cols != n {
		panic(fmt.Errorf("%w: matrix %d times %dx%d operator", ErrDimensionMismatch, len(m), q.rows, q.cols))
	}
	for i := 0; i < n; i++ {
		row := dst[i*n : (i+1)*n]
		for k := 0; k < n; k++ {
			a := m[i*n+k]
			if a == 0 {
				continue
			}
			cmplxs.AddScaled(row, alpha*a, q.data[k*n:(k+1)*n])
		}
	}
}

func (q *Qobj) Trace() complex128 {
	if q.kind != oper {
		panic(fmt.Errorf("%w: trace of %dx%d", ErrDimensionMismatch, q.rows, q.cols))
	}
	var t complex128
	for i := 0; i < q.rows; i++ {
		t += q.data[i*q.cols+i]
	}
	return t
}

// Norm is the Euclidean norm of a ket or the Frobenius norm of an operator.
func (q *Qobj) Norm() float64 { return cmplxs.Norm(q.data, 2) }

func (q *Qobj) EqualApprox(b *Qobj, tol float64) bool {
	return q.SameSpace(b) && cmplxs.EqualApprox(q.data, b.data, tol)
}

func (q *Qobj) IsHermitian(tol float64) bool {
	return q.kind == oper && q.EqualApprox(q.Dag(), tol)
}

// KetToDM returns |ψ⟩⟨ψ|.
func (q *Qobj) KetToDM() *Qobj {
	if q.kind != ket {
		panic(fmt.Errorf("%w: KetToDM on %dx%d", ErrDimensionMismatch, q.rows, q.cols))
	}
	n := q.rows
	out := &Qobj{dims: append([]int(nil), q.dims...), rows: n, cols: n, data: make([]complex128, n*n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.data[i*n+j] = q.data[i] * cmplx.Conj(q.data[j])
		}
	}
	return out
}

func (q *Qobj) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Qobj %s dims=%v shape=(%d,%d)\n", q.kind, q.dims, q.rows, q.cols)
	for i := 0; i < q.rows; i++ {
		for j := 0; j < q.cols; j++ {
			v := q.data[i*q.cols+j]
			fmt.Fprintf(&b, " %7.3f%+7.3fi", real(v), imag(v))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (k kind) String() string {
	switch k {
	case ket:
		return "ket"
	case bra:
		return "bra"
	default:
		return "oper"
	}
}

// Commutator returns ab - ba.
func Commutator(a, b *Qobj) *Qobj { return a.Mul(b).Sub(b.Mul(a)) }

// Anticommutator returns ab + ba.
func Anticommutator(a, b *Qobj) *Qobj { return a.Mul(b).Add(b.Mul(a)) }

// Expect returns ⟨ψ|A|ψ⟩ for a ket or Tr(Aρ) for a density matrix.
func Expect(op, state *Qobj) complex128 {
	if op.kind != oper || op.cols != state.rows || state.kind == bra {
		panic(fmt.Errorf("%w: expect of %dx%d on %dx%d", ErrDimensionMismatch, op.rows, op.cols, state.rows, state.cols))
	}
	return ExpectRaw(op, state.data, state.kind == ket)
}

// ExpectRaw is Expect over a flattened ket (isKet) or row-major density matrix.
func ExpectRaw(op *Qobj, x []complex128, isKet bool) complex128 {
	n := op.rows
	if isKet {
		tmp := make([]complex128, n)
		op.MulVecTo(tmp, 1, x)
		return cmplxs.Dot(x, tmp)
	}
	var t complex128
	for i := 0; i < n; i++ {
		row := op.data[i*n : (i+1)*n]
		for k, a := range row {
			if a != 0 {
				t += a * x[k*n+i]
			}
		}
	}
	return t
}
