// Package cli provides the interactive LoanDesk command-line client.
//
// The client works directly on a local store (SQLite in the data directory
// by default): applicants submit applications and get repayment quotes,
// reviewers sign in to list, search, review and decide on them. Auth state
// changes are printed as they happen, including those made by another
// process sharing the same store.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
