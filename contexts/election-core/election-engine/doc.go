// Package electionengine implements the single-cycle election with fund
// escrow inside the election-core context.
//
// The module owns the cycle lifecycle (open, elect, claim, close), candidate
// registration and roster order, the one-vote ledger, pledge escrow with its
// zero-then-transfer custody discipline, vote delegation, and the three-level
// tie-break that picks the winner. Business rules live in application/domain
// layers; infrastructure sits behind ports and adapters.
package electionengine
