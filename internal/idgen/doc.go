// Package idgen implements identifier sourcing for ExpertLog and ExpertCamp
// records.
//
// Three modes are supported, chosen per deployment and per entity:
//
//   - serial: the primary store assigns an integer; the coordinator captures
//     it from the insert result and reuses it for the secondary.
//   - token: the caller supplies a globally unique string; a request without
//     one is rejected.
//   - uuid: the caller may supply a token; otherwise a UUIDv7 is minted before
//     the primary write.
package idgen
