package operators

import (
	"testing"

	"github.com/san-kum/qdynsim/internal/qobj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQubitOnlyDefaultCapIsFullSpace(t *testing.T) {
	q, err := NewQubitOnly(3, DefaultExcitations)
	require.NoError(t, err)

	assert.Equal(t, 9, q.Excitations)
	assert.Equal(t, 8, q.Dim())
	for _, group := range [][]*qobj.Qobj{q.Sm, q.Sp, q.Sz, q.Sx, q.Sy, q.F} {
		require.Len(t, group, 3)
		for _, op := range group {
			assert.Equal(t, 8, op.N())
		}
	}
}

func TestQubitOnlyRestrictedBasis(t *testing.T) {
	q, err := NewQubitOnly(4, 1)
	require.NoError(t, err)

	// vacuum plus one state per single excitation
	assert.Equal(t, 5, q.Dim())

	psi, err := q.Basis([]int{0, 0, 1, 0})
	require.NoError(t, err)
	vac, err := q.Basis([]int{0, 0, 0, 0})
	require.NoError(t, err)

	assert.True(t, q.Sm[2].Mul(psi).EqualApprox(vac, tol))
	assert.True(t, q.Sp[2].Mul(vac).EqualApprox(psi, tol))

	_, err = q.Basis([]int{1, 1, 0, 0})
	assert.ErrorIs(t, err, qobj.ErrDimensionMismatch)
}

func TestQubitOnlyJordanWigner(t *testing.T) {
	q, err := NewQubitOnly(3, DefaultExcitations)
	require.NoError(t, err)
	assertJordanWigner(t, q.F, q.Iden, q.Zero)
}

func TestQubitOnlyHalfPauli(t *testing.T) {
	q, err := NewQubitOnly(2, DefaultExcitations)
	require.NoError(t, err)

	up, err := q.Basis([]int{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, real(qobj.Expect(q.Sz[0], up)), tol)
	assert.InDelta(t, 0.25, real(qobj.Expect(q.Sx[0].Mul(q.Sx[0]), up)), tol)
}

func TestQubitOnlyZeroCapIsVacuum(t *testing.T) {
	q, err := NewQubitOnly(3, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, q.Excitations)
	assert.Equal(t, 1, q.Dim())
	assert.Equal(t, [][]int{{0, 0, 0}}, q.States)
	for _, sm := range q.Sm {
		assert.True(t, sm.EqualApprox(q.Zero, tol))
	}

	vac, err := q.Basis([]int{0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, real(qobj.Expect(q.Sz[1], vac)), tol)
}

func TestQubitOnlyInvalidSites(t *testing.T) {
	_, err := NewQubitOnly(0, 0)
	assert.Error(t, err)
}
