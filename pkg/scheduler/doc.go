// Package scheduler coalesces update requests into render cycles.
//
// A Scheduler is either idle, collecting (depth > 0) or collecting with an
// update pending. Requests made while collecting are deferred and run as
// exactly one cycle when the outermost collection ends:
//
//	s.CollectUpdatesStart()
//	s.RequestUpdate(nil) // deferred
//	s.RequestUpdate(nil) // deferred, coalesced
//	s.CollectUpdatesEnd() // one render cycle
//
// Collections nest. Requests made while a cycle is running are coalesced
// into a single follow-up pass, so cycles never interleave. Follow-up
// passes are bounded; a cycle that keeps requesting updates ends with an
// update storm error.
//
// A Scheduler is not safe for concurrent use.
package scheduler
