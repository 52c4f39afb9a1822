// Package collector contains the producers that feed log lines into the
// batching store.
//
// A [Supervisor] runs a child process and captures its stdout and stderr.
// A [Follower] tails a file on disk. Both hand each line to a [Sink], which
// compresses it and adds the result to the store. Compression happens before
// the store lock is taken.
package collector
