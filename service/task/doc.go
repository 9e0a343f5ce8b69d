// Package task implements the task action orchestrator: start, complete,
// delegate, transfer, terminate, add or remove co-signers and return a
// request to its applicant. Every action runs in a single engine
// transaction, guards before it mutates and leaves exactly one audit comment.
//
// Actions take the acting user explicitly:
//
//	srv, _ := task.New(engine)
//	result, err := srv.Start(ctx, actor, &task.StartRequest{BusinessKey: "PO-1001", ProcessKey: "purchase-order"})
//
// Failures are *types.Error values classified by kind.
package task
