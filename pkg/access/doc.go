// Package access defines the immutable request model consumed by the
// authorization core: who is asking (User and Role), what they want to do
// (Operation), what they want to do it to (Resource), and the situation they
// are asking from (network, time, session and device contexts).
//
// # Role Ranks
//
// Roles are compared by an explicit rank table, never by declaration order:
//   - STUDENT: rank 1
//   - TEACHER: rank 2
//   - ADMIN:   rank 3
//
// Unknown roles have rank 0 and therefore fail every rank check.
//
// # Building a Context
//
//	ctx, err := access.NewContextBuilder().
//		User(user).
//		Operation(op).
//		Resource(res).
//		Network(access.NetworkContext{IP: "10.0.0.7", Internal: true, Encrypted: true}).
//		Build()
//
// Build fails when the user, operation or resource is missing. Omitted
// sub-contexts get neutral defaults (loopback network, "now", a fresh session,
// an unknown device).
//
// # Thread Safety
//
// A built Context is never mutated and may be shared between goroutines.
package access
