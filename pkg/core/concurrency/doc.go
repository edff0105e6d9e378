// Package concurrency implements the group executor: a fixed set of bounded
// worker pools fronted by a sticky router.
//
// Every caller presents an Identity. The first submission of an identity
// pins it to a pool chosen round-robin; later submissions go to the same pool,
// so tasks of one caller keep their order and many callers spread over
// several queues instead of contending on one.
//
// Each pool admits work in a fixed order: an idle or new core worker, then
// the queue, then an extra worker up to MaxWorkers, and finally rejection.
// Rejection is synchronous (ErrRejected); retries and load shedding are left
// to the caller.
//
//	cfg := concurrency.Resolve(tunables, logger)
//	group := concurrency.NewGroupExecutor(concurrency.WithLogger(logger))
//	if err := group.Initialize(ctx, cfg); err != nil {
//		return err
//	}
//	defer group.Shutdown(ctx)
//
//	exec := group.Bind(concurrency.NewIdentity())
//	if err := exec.Submit(task); errors.Is(err, concurrency.ErrRejected) {
//		// shed load
//	}
package concurrency
