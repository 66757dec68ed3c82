package qobj

import (
	"fmt"
	"math"
)

// ENRStates enumerates the occupation tuples of an excitation-number
// restricted space: n_i < dims[i] and Σ n_i ≤ excitations. States are in
// lexicographic order with the last subsystem varying fastest.
func ENRStates(dims []int, excitations int) [][]int {
	var states [][]int
	cur := make([]int, len(dims))
	var walk func(i, used int)
	walk = func(i, used int) {
		if i == len(dims) {
			states = append(states, append([]int(nil), cur...))
			return
		}
		for n := 0; n < dims[i] && used+n <= excitations; n++ {
			cur[i] = n
			walk(i+1, used+n)
		}
		cur[i] = 0
	}
	walk(0, 0)
	return states
}

type enrIndex struct {
	dims   []int
	states [][]int
	lookup map[int]int
}

func newENRIndex(dims []int, excitations int) *enrIndex {
	idx := &enrIndex{dims: dims, states: ENRStates(dims, excitations), lookup: make(map[int]int)}
	for i, s := range idx.states {
		idx.lookup[idx.key(s)] = i
	}
	return idx
}

// key encodes an occupation tuple in mixed radix.
func (e *enrIndex) key(occ []int) int {
	k := 0
	for i, n := range occ {
		k = k*e.dims[i] + n
	}
	return k
}

// ENRDestroy returns one annihilation operator per subsystem acting on the
// restricted space.
func ENRDestroy(dims []int, excitations int) []*Qobj {
	idx := newENRIndex(dims, excitations)
	n := len(idx.states)
	ops := make([]*Qobj, len(dims))
	for site := range dims {
		data := make([]complex128, n*n)
		lowered := make([]int, len(dims))
		for col, s := range idx.states {
			if s[site] == 0 {
				continue
			}
			copy(lowered, s)
			lowered[site]--
			row := idx.lookup[idx.key(lowered)]
			data[row*n+col] = complex(math.Sqrt(float64(s[site])), 0)
		}
		ops[site] = NewOperator([]int{n}, data)
	}
	return ops
}

// ENRIdentity is the identity on the restricted space.
func ENRIdentity(dims []int, excitations int) *Qobj {
	return Identity(len(ENRStates(dims, excitations)))
}

// ENRBasis returns the restricted-space ket with the given occupations.
func ENRBasis(dims []int, excitations int, occupations []int) (*Qobj, error) {
	if len(occupations) != len(dims) {
		return nil, fmt.Errorf("%w: %d occupations for %d subsystems", ErrDimensionMismatch, len(occupations), len(dims))
	}
	idx := newENRIndex(dims, excitations)
	total := 0
	for i, n := range occupations {
		if n < 0 || n >= dims[i] {
			return nil, fmt.Errorf("%w: occupation %d outside %d levels", ErrDimensionMismatch, n, dims[i])
		}
		total += n
	}
	if total > excitations {
		return nil, fmt.Errorf("%w: %d excitations exceed cap %d", ErrDimensionMismatch, total, excitations)
	}
	data := make([]complex128, len(idx.states))
	data[idx.lookup[idx.key(occupations)]] = 1
	return NewKet([]int{len(idx.states)}, data), nil
}
