// File: main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lguibr/troupe/config"
	"github.com/lguibr/troupe/monitoring"
	"github.com/lguibr/troupe/server"
	"github.com/lguibr/troupe/supervisor"
	"github.com/lguibr/troupe/troupe"
)

// Job is the demo protocol: a unit of work routed to a worker.
type Job struct {
	Seq     int    `json:"seq"`
	Payload string `json:"payload"`
}

func (Job) MessageType() string { return "job" }

// worker processes jobs and panics on poison payloads, exercising the
// restart path.
type worker struct {
	name string
	seen int
}

func (w *worker) Handle(ctx *troupe.Context[Job], msg Job) error {
	if msg.Payload == "poison" {
		panic("poison payload")
	}
	w.seen++
	fmt.Printf("%s: job %d (%s), %d handled this incarnation\n",
		w.name, msg.Seq, msg.Payload, w.seen)
	return nil
}

func (w *worker) OnError(ctx *troupe.Context[Job], err error) troupe.ErrorAction {
	return troupe.ActionRestart
}

// workerChild bridges a spawned worker to the supervision contract. Each
// restart spawns a fresh actor on the same broker.
type workerChild struct {
	name   string
	broker *troupe.Broker[Job]
	cfg    troupe.SpawnConfig

	mu     sync.Mutex
	handle *troupe.Handle[Job]
}

func (c *workerChild) Start(ctx context.Context) error {
	h, err := troupe.Spawn[Job](c.broker, func() troupe.Actor[Job] {
		return &worker{name: c.name}
	}, c.cfg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.handle = h
	c.mu.Unlock()
	return nil
}

func (c *workerChild) Stop(ctx context.Context, timeout time.Duration) error {
	h := c.Handle()
	if h == nil {
		return nil
	}
	return h.Stop(timeout)
}

func (c *workerChild) HealthCheck() supervisor.ChildHealth {
	h := c.Handle()
	if h == nil || !h.Lifecycle().IsRunning() {
		return supervisor.Unhealthy(c.name + " is not running")
	}
	return supervisor.Healthy()
}

func (c *workerChild) Handle() *troupe.Handle[Job] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

func main() {
	cfg, err := config.Load("troupe.yaml")
	if err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}

	memory := monitoring.NewMemory(cfg.HistorySize)
	sinks := []monitoring.Monitor{memory}
	if cfg.JournalPath != "" {
		journal, err := monitoring.OpenJournal(cfg.JournalPath)
		if err != nil {
			fmt.Println("Journal error:", err)
			os.Exit(1)
		}
		defer journal.Close()
		sinks = append(sinks, journal)
	}

	wsServer := server.NewServer(nil, memory)
	sinks = append(sinks, wsServer)
	monitor := monitoring.Tee(sinks...)

	broker := troupe.NewBroker[Job]()
	node := supervisor.NewNode("workers", supervisor.OneForOne{},
		supervisor.WithMonitor(monitor),
		supervisor.WithIntensity(cfg.Intensity()),
		supervisor.WithHealthChecks(cfg.HealthConfig()),
	)
	wsServer.AttachTree(node)

	children := make([]*workerChild, 0, 3)
	for i := 0; i < 3; i++ {
		child := &workerChild{
			name:   fmt.Sprintf("worker-%d", i),
			broker: broker,
			cfg: troupe.SpawnConfig{
				Name:    fmt.Sprintf("worker-%d", i),
				Mailbox: cfg.MailboxConfig(),
				Monitor: monitor,
			},
		}
		spec := supervisor.NewChildSpec(child.name)
		if err := node.AddChild(spec, child); err != nil {
			fmt.Println("AddChild error:", err)
			os.Exit(1)
		}
		children = append(children, child)
	}

	ctx := context.Background()
	if err := node.StartAllChildren(ctx); err != nil {
		fmt.Println("Start error:", err)
		os.Exit(1)
	}
	fmt.Println("Supervision tree started:", node.Name())

	// Feed the workers round-robin; every 25th job is poison.
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		seq := 0
		for range ticker.C {
			child := children[seq%len(children)]
			h := child.Handle()
			if h == nil {
				continue
			}
			payload := "tick"
			if seq%25 == 24 {
				payload = "poison"
			}
			job := Job{Seq: seq, Payload: payload}
			if err := broker.Publish(ctx, h.Address(), job); err != nil {
				fmt.Println("Publish error:", err)
			}
			seq++
		}
	}()

	go func() {
		fmt.Println("Event stream on", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, wsServer.Handler()); err != nil {
			fmt.Println("HTTP server error:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("Shutting down")
	if err := node.StopAllChildren(ctx); err != nil {
		fmt.Println("Shutdown error:", err)
	}
	wsServer.Close()
}
