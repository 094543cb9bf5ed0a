// Package bootstrap runs a datafeed binary through its lifecycle.
//
// NewApp applies config defaults, validates, and initializes logging.
// RunTask then starts the registered components in order, runs the hooks,
// prints the startup summary, executes the task with SIGINT/SIGTERM
// cancellation, and stops everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(store)
//	app.RegisterComponent(pipeline)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return consume(ctx, pipeline)
//	})
package bootstrap
