package qobj

import (
	"fmt"
	"math"
)

// Zero returns the n×n zero operator.
func Zero(n int) *Qobj {
	return NewOperator([]int{n}, make([]complex128, n*n))
}

// Identity returns the n×n identity.
func Identity(n int) *Qobj {
	data := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	return NewOperator([]int{n}, data)
}

// Destroy returns the annihilation operator truncated to n Fock states,
// a|k⟩ = √k |k-1⟩.
func Destroy(n int) *Qobj {
	data := make([]complex128, n*n)
	for k := 1; k < n; k++ {
		data[(k-1)*n+k] = complex(math.Sqrt(float64(k)), 0)
	}
	return NewOperator([]int{n}, data)
}

func Create(n int) *Qobj { return Destroy(n).Dag() }

// Num returns a†a truncated to n Fock states.
func Num(n int) *Qobj {
	data := make([]complex128, n*n)
	for k := 0; k < n; k++ {
		data[k*n+k] = complex(float64(k), 0)
	}
	return NewOperator([]int{n}, data)
}

// Basis returns the Fock ket |k⟩ in an n-level space.
func Basis(n, k int) *Qobj {
	if k < 0 || k >= n {
		panic(fmt.Errorf("%w: basis state %d outside %d levels", ErrDimensionMismatch, k, n))
	}
	data := make([]complex128, n)
	data[k] = 1
	return NewKet([]int{n}, data)
}

// Tensor returns the Kronecker product of its arguments, left to right.
// All arguments must be operators, or all kets.
func Tensor(objs ...*Qobj) *Qobj {
	if len(objs) == 0 {
		panic(fmt.Errorf("%w: empty tensor product", ErrDimensionMismatch))
	}
	out := objs[0].Clone()
	for _, b := range objs[1:] {
		out = kron(out, b)
	}
	return out
}

func kron(a, b *Qobj) *Qobj {
	if a.kind != b.kind {
		panic(fmt.Errorf("%w: tensor of %s and %s", ErrDimensionMismatch, a.kind, b.kind))
	}
	rows, cols := a.rows*b.rows, a.cols*b.cols
	out := &Qobj{
		kind: a.kind,
		dims: append(append([]int(nil), a.dims...), b.dims...),
		rows: rows,
		cols: cols,
		data: make([]complex128, rows*cols),
	}
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			v := a.data[i*a.cols+j]
			if v == 0 {
				continue
			}
			for k := 0; k < b.rows; k++ {
				for l := 0; l < b.cols; l++ {
					out.data[(i*b.rows+k)*cols+j*b.cols+l] = v * b.data[k*b.cols+l]
				}
			}
		}
	}
	return out
}
