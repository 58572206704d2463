// Package redisstore is a Redis-backed [authgate.UserStore]. Accounts live
// as hashes keyed by user ID with a secondary email index for lookup; email
// uniqueness is enforced with SetNX on the index key, so concurrent
// registrations of the same address race safely.
//
// Key layout (prefix defaults to "ag"):
//
//	{prefix}:user:{id}     hash: email, password_hash, created_at, active
//	{prefix}:email:{email} string: user ID
//
// Backend failures are wrapped in [authgate.ErrStoreUnavailable]; missing
// records and duplicate emails surface as the store sentinels the Engine
// classifies on.
package redisstore
