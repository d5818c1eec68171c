// Package pipeline coordinates the media build steps.
//
// It defines the Step contract, discovers renders under theme roots, and runs
// steps strictly sequentially under a file lock: the first failing step
// aborts the run, completed artifacts stay in place, and every execution is
// recorded in the build ledger. Error sentinels classify failures for the CLI.
package pipeline
