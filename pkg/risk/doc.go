// Package risk scores a request on a 0-100 scale from six independent
// factors and buckets the result into a Level.
//
// # Factors
//
//   - user: behaviour profile, role offset, failed logins, account age
//   - network: threat rating of the origin, trust, VPN, country, encryption
//   - operation: category sensitivity, sensitive resource, bulk actions
//   - time: outside working hours, deep night
//   - session: very long or very fresh sessions
//   - device: unknown type, untrusted id
//
// Each factor is clamped to [0,100] and combined with Weights, which must sum
// to 1.0. The Engine records every assessment in the requester's behaviour
// profile, so denied requests still raise future risk.
//
// # Levels
//
//	score >= 80  CRITICAL
//	score >= 60  HIGH
//	score >= 30  MEDIUM
//	otherwise    LOW
//
// The Engine is safe for concurrent use.
package risk
