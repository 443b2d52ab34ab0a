package await

type config struct {
	pool     Executor
	runner   Runner
	observer Observer
	escalate func(error)
}

// Option configures a driver.
type Option func(*config)

// WithExecutor sets the worker pool that AwaitFunc dispatches to.
// The default spawns a goroutine per function.
func WithExecutor(e Executor) Option {
	return func(c *config) {
		if e != nil {
			c.pool = e
		}
	}
}

// WithAffinity sets the runner through which every resumption after a
// suspension is marshaled. Without it, resumptions run on whichever
// goroutine the completing source fires on.
func WithAffinity(r Runner) Option {
	return func(c *config) { c.runner = r }
}

// WithObserver attaches a lifecycle observer to the driver and its task.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// WithEscalation sets the handler for errors that reach a terminal task
// with nobody listening. The default panics, on the affinity runner when
// one is configured.
func WithEscalation(f func(error)) Option {
	return func(c *config) {
		if f != nil {
			c.escalate = f
		}
	}
}

func defaultConfig() config {
	return config{
		pool:     GoExecutor{},
		escalate: func(err error) { panic(err) },
	}
}
