// Package harness runs descriptor conformance scenarios.
//
// A scenario names a set of CUE declaration files (or inline source), an
// environment, path invocations to bind against the declared functions,
// and assertions over the assembled descriptor. Scenarios are the
// executable contract for how declarations lower into the descriptor.
//
// # Scenario Format
//
//	name: firestore_orders
//	description: "Order triggers bind document captures"
//	declarations:
//	  - orders.cue
//	env:
//	  MIN_INSTANCES: "2"
//	invocations:
//	  - function: onOrder
//	    paths: { document: "orders/o-1" }
//	    expect: { id: "o-1" }
//	assertions:
//	  - type: function_count
//	    count: 2
//	  - type: endpoint_field
//	    function: onOrder
//	    field: eventTrigger.eventFilterPathPatterns.document
//	    value: "orders/{id}"
//	  - type: param_value
//	    param: MIN_INSTANCES
//	    value: 2
//
// # Assertion Types
//
//   - function_count: the number of declared functions
//   - endpoint_field: a dotted field of one endpoint equals value, or is absent
//   - required_api: the descriptor lists the API
//   - param_declared: the param is registered
//   - param_value: the param resolves to value under the scenario env
//   - validation_error: validation reported the code
//
// Validation errors fail a scenario unless it asserts at least one
// validation_error.
//
// # Deterministic Runs
//
// The environment comes only from the scenario's env map, never from the
// process, so the descriptor and its hash are reproducible and can be
// compared against golden snapshots (see RunWithGolden).
package harness
