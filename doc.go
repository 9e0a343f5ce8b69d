// Package taskflow orchestrates human approval tasks on top of a process
// engine: starting requests, approving, delegating, transferring,
// terminating, adding or removing co-signers and returning a request to its
// first step. Every action runs in a single engine transaction, leaves an
// audit comment and guards against requests that already reached a terminal
// business status.
//
// The root package wires the reference in-memory engine, process storage
// (memory, afs file system or BoltDB), YAML definitions, events, tracing
// and metrics from a Config:
//
//	srv, _ := taskflow.New(ctx, taskflow.WithConfig(config))
//	defer srv.Close(ctx)
//	started, _ := srv.Tasks().Start(ctx, actor, &task.StartRequest{BusinessKey: "PO-1001", ProcessKey: "purchase-order"})
//	_ = srv.Tasks().Complete(ctx, actor, &task.CompleteRequest{TaskID: started.TaskID})
//
// See service/task for the individual actions.
package taskflow
