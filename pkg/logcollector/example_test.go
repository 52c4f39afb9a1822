package logcollector_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/logcollector/pkg/logcollector"
)

// ExampleNew demonstrates how to embed the collector in an application.
func ExampleNew() {
	cfg := logcollector.DefaultConfig()
	cfg.Command = "sh"
	cfg.Args = []string{"-c", "echo ready"}
	cfg.ListenAddr = "127.0.0.1:0"

	c, err := logcollector.New(cfg)
	if err != nil {
		fmt.Printf("failed to create collector: %v\n", err)
		return
	}

	// Start is non-blocking.
	if err := c.Start(context.Background()); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		return
	}

	status := c.Status()
	fmt.Printf("Status is valid: %v\n", status == logcollector.StateStarting || status == logcollector.StateRunning)

	_ = c.Close()

	// Output: Status is valid: true
}

// Example_withEventHandler demonstrates how to receive lifecycle events.
func Example_withEventHandler() {
	handler := &printingHandler{}

	cfg := logcollector.DefaultConfig()
	c, err := logcollector.New(cfg, logcollector.WithEventHandler(handler))
	if err != nil {
		fmt.Printf("failed to create collector: %v\n", err)
		return
	}

	_ = c
}

// printingHandler implements logcollector.EventHandler.
type printingHandler struct {
	logcollector.BaseEventHandler
}

func (h *printingHandler) OnStateChange(event logcollector.StateChangeEvent) {
	fmt.Printf("State changed: %s -> %s (reason: %s)\n",
		event.Previous, event.Current, event.Reason)
}
