// Package schedule provides the single-slot schedulers the grid uses to
// keep relayouts cheap under bursts of input.
//
// Every scheduler holds at most one pending call. A newer call replaces the
// pending one, so a superseded call is simply never run; nothing is
// cancelled half-way.
//
//   - [Throttle] runs the first call of a burst immediately and guarantees
//     one trailing run with the latest call once the interval has passed.
//   - [Coalescer] collapses every call made before the next frame into one,
//     using the latest.
//   - [Debouncer] runs the latest call once input has been quiet for the
//     whole delay.
//
// Timer callbacks fire on their own goroutine. Owners that require all
// mutations on one goroutine (a bubbletea program, an HTTP handler holding a
// lock) pass [WithDispatch] to route the deferred call back into their event
// loop. [Scheduler.Flush] runs a pending call synchronously on the caller's
// goroutine.
package schedule
