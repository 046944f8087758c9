// Package replica is the dual-write coordinator.
//
// Every write goes to the primary store first and, when one is configured,
// to the secondary store afterwards, sequentially on the caller's goroutine.
// There is no transaction spanning the two stores; the policy is:
//
//   - Primary failure: the write fails with the primary's *store.Error and the
//     secondary is never touched.
//   - Secondary failure: the write succeeds for the caller (the primary is
//     authoritative) and a *PartialReplicationError is delivered to the Sink.
//     The primary is never rolled back.
//
// Store-generated identifiers are captured from the primary insert and
// written verbatim to the secondary, so both stores agree on identifiers.
//
// The Outbox sink keeps failed changes in the primary so Reconcile can replay
// them into the secondary later.
package replica
