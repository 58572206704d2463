// Package audit defines the audit event model and the sinks the engine's
// dispatcher can deliver into. Sinks must tolerate concurrent Emit calls;
// delivery ordering is the dispatcher's concern, not theirs.
package audit
