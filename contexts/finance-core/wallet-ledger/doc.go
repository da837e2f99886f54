// Package walletledger owns the value primitives the election builds on:
// account balances, deposits, atomic two-sided transfers, and the monotonic
// step counter advanced by administrator transitions.
package walletledger
