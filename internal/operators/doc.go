// Package operators assembles per-site ladder and Pauli-like operators into
// full tensor-product operators over a multi-site qubit+cavity lattice.
//
// [New] builds the full space from [dynamo.Parameters]: every site is a
// two-level system, optionally tensored with a Fock-truncated oscillator.
// [NewQubitOnly] builds the qubit-only variant over an
// excitation-number-restricted basis. Both expose the Jordan-Wigner
// operators F, whose string of -Sz factors makes operators on different
// sites anticommute.
package operators
