// Package executor issues the commands behind every collected item.
//
// Two families of calls exist:
//
//   - Shell commands run through a Runner (sh -c on this host, or inside a
//     Rook toolbox pod). RunCephShell wraps a ceph CLI subcommand.
//   - Control-plane queries go through a ControlPlane handle (pkg/ceph).
//
// Every call carries its own timeout and returns a Result whose Status tells
// the collector what happened. Only a command that cannot be started at all,
// or a cancelled run, is reported as an error; unknown commands, timeouts
// and empty output are soft and yield empty content.
//
// Usage:
//
//	ex := &executor.Executor{
//	    Runner:       executor.NewLocalRunner(),
//	    ControlPlane: client,
//	    Timeout:      10 * time.Second,
//	    Limiter:      executor.NewLimiter(5),
//	    Logger:       logger,
//	}
//	res, err := ex.RunShell(ctx, "uname -a")
//	tree := ex.RunControlPlane(ctx, "osd tree", false)
package executor
