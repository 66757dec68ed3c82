// Package qobj implements dense quantum objects: operators and kets over a
// tensor-product Hilbert space with per-subsystem dimensions.
//
// A [Qobj] is a row-major complex matrix. Kets are d×1 and share the dims of
// the operators acting on them. Algebra on mismatched shapes panics with
// [ErrDimensionMismatch], following the gonum mat convention; code that
// accepts operators from callers should check [Qobj.SameSpace] first.
//
// Constructors cover the single-mode building blocks ([Destroy], [Identity],
// [Zero], [Basis]), the Kronecker product ([Tensor]) and the
// excitation-number-restricted basis ([ENRDestroy], [ENRIdentity]).
package qobj
