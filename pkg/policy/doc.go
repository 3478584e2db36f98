// Package policy holds named, prioritised rules and combines their decisions.
//
// # Combination
//
// Engine.Evaluate walks the registered policies by priority (highest first,
// ties by name) and collects the decision of every policy whose condition
// holds:
//
//  1. The first DENY from a policy with priority >= HardDenyPriority is
//     returned at once and nothing below it is evaluated.
//  2. Otherwise any DENY wins over any ALLOW (deny-override).
//  3. Otherwise the first ALLOW wins.
//  4. Otherwise the result is DENY with DefaultDenyReason.
//
// A condition that fails or panics is logged and treated as not applying;
// evaluation of the remaining policies continues.
//
// # Conditions
//
// Conditions are data, not closures, so policies can be loaded from YAML,
// shipped as CBOR bundles and inspected:
//
//	always                      always true
//	role_at_least               requester rank >= role
//	resource_type_equals        resource type matches
//	operation_category_equals   operation category matches
//	network_trusted             origin is (trusted: true) or is not a trusted network
//	business_hours              request falls within 09:00-18:00
//	risk_at_least               assessed level >= level
//	cedar                       the Cedar document permits the request
//	all, any, not               composition
//
// Example policy file:
//
//	policies:
//	  - name: deny-night-building
//	    priority: 300
//	    decision: DENY
//	    reason: building is closed at night
//	    condition:
//	      kind: all
//	      conditions:
//	        - kind: operation_category_equals
//	          category: BUILDING
//	        - kind: not
//	          conditions:
//	            - kind: business_hours
package policy
