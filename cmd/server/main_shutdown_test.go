package main

import (
	"net"
	"net/http"
	"os"
	osSignal "os/signal"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fakeSignal(t *testing.T, sig os.Signal) {
	t.Helper()
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() {
			ch <- sig
		}()
	}
}

func TestShutdownLogsReceivedSignal(t *testing.T) {
	fakeSignal(t, syscall.SIGTERM)

	server := &http.Server{}
	called := make(chan struct{}, 1)
	server.RegisterOnShutdown(func() {
		called <- struct{}{}
	})

	core, logs := observer.New(zapcore.InfoLevel)
	shutdown(server, time.Millisecond, zap.New(core))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected server shutdown callback to execute")
	}

	entries := logs.FilterMessage("shutting down server").All()
	if len(entries) != 1 {
		t.Fatalf("expected one shutdown log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["signal"]; got != syscall.SIGTERM.String() {
		t.Fatalf("expected signal field %q, got %v", syscall.SIGTERM.String(), got)
	}
	if logs.FilterMessage("graceful shutdown failed").Len() != 0 {
		t.Fatalf("idle server should shut down gracefully")
	}
}

func TestShutdownForcesCloseAfterTimeout(t *testing.T) {
	fakeSignal(t, os.Interrupt)

	entered := make(chan struct{})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-release
		}),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	served := make(chan error, 1)
	go func() {
		served <- server.Serve(ln)
	}()

	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("request never reached the handler")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	shutdown(server, 20*time.Millisecond, zap.New(core))

	entries := logs.FilterMessage("shutting down server").All()
	if len(entries) != 1 || entries[0].ContextMap()["signal"] != os.Interrupt.String() {
		t.Fatalf("expected shutdown entry with interrupt signal, got %v", logs.All())
	}
	if logs.FilterMessage("graceful shutdown failed").Len() != 1 {
		t.Fatalf("expected graceful shutdown to time out, got %v", logs.All())
	}
	if logs.FilterMessage("forced close failed").Len() != 0 {
		t.Fatalf("forced close should succeed, got %v", logs.All())
	}

	select {
	case err := <-served:
		if err != http.ErrServerClosed {
			t.Fatalf("expected ErrServerClosed from Serve, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("server kept serving after shutdown")
	}
}
