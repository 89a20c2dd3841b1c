// Package supervisor owns the lifecycle of the configured services.
//
// Every service id has one slot holding its lifecycle state, the live
// process handle and a bounded log buffer. Transitions for one service are
// applied under the slot lock and emitted while it is held, so observers
// see them in order. Start, stop and restart of one service are serialized
// by a second per-slot lock; status queries never wait on it.
//
// Each running service owns three goroutines: one reader per output stream
// and an exit watcher that blocks on the handle's done channel. The watcher
// and query-time reconciliation only apply an exit if the slot still owns
// the handle that exited, which keeps a concurrent stop authoritative.
//
// Example Usage:
//
//	sv := supervisor.New(log, sink, supervisor.DefaultConfig())
//	sv.SetServices(cfg.Services)
//	status, err := sv.Start("api")
//	...
//	sv.Stop(ctx, "api")
package supervisor
