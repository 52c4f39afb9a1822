// Package logcollector provides an embeddable log collector.
//
// A Collector runs a monitored command and optionally tails files, compresses
// every captured line, buffers the payloads in fixed-size batches and serves
// the oldest batch over HTTP on each GET /logs.
//
// # Basic Usage
//
//	cfg := logcollector.DefaultConfig()
//	cfg.Command = "journalctl"
//	cfg.Args = []string{"-f"}
//
//	c, err := logcollector.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := c.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
// # Configuration
//
// [DefaultConfig] returns the CLI defaults: batches of 5, ping localhost,
// LZ4 payloads, HTTP on 0.0.0.0:3000. A zero Config must at least set
// MaxBatchSize and either Command or Follow; [Config.SetDefaults] fills the
// rest.
//
// # Embedding the Store
//
// [WithStore] makes the collector write into a store owned by the caller,
// and [Collector.Store] returns a handle to read from it directly:
//
//	batch, err := c.Store().RetrieveFirst()
//
// Payloads are compressed with [Collector.Codec].
//
// # Lifecycle States
//
// A Collector is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. A crashed or stopped collector can be
// started again. [Collector.Done] is closed when a run ends and
// [Collector.Err] reports why it crashed.
package logcollector
