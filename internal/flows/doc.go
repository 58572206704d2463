// Package flows contains the request gate orchestration for register, login,
// refresh, and profile operations. Each flow receives its dependencies as a
// deps struct of functions supplied by the root package, so flows stay free
// of root-package imports and can be unit-tested with stubs.
//
// Ordering invariant: every flow evaluates its rate budget first and only
// then touches the credential store, hasher, or token codec. Flows never
// hold limiter state across those calls; the limiter check completes before
// dispatch.
package flows
