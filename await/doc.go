// Package await provides a cancelable, single-assignment asynchronous
// result primitive (Task) together with a Driver that runs a sequential
// computation, lets it suspend on external asynchronous sources, and
// resumes it when a source settles.
//
// A computation is written in continuation-passing style: each segment is
// ordinary synchronous code that either finishes the computation
// (Driver.Resolve, Driver.Reject) or suspends by awaiting exactly one
// source (AwaitTask, AwaitCall, AwaitSingle, AwaitFunc), naming the
// continuation to run when that source settles.
//
// A computation starts on its caller's goroutine and runs there until its
// first suspension. Each resumption runs on whichever goroutine the
// completing source fires on, unless an affinity Runner is configured, in
// which case every resumption is marshaled through it first.
package await
