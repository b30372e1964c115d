// Package logger defines the observability sink injected into bridge components.
package logger

import (
	"fmt"
	"os"
)

// Logger is the logging interface every component receives at construction.
// The poll loop and publisher never reach for process-global logging state;
// embedding applications choose the implementation.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable logs to stdout/stderr.
type ConsoleLogger struct {
	// Verbose enables Debug output; Info and Error are always written.
	Verbose bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if c.Verbose {
		fmt.Printf("[DEBUG] "+msg+"\n", args...)
	}
}

// SilentLogger discards all log messages. Used when the TUI owns the
// terminal and log output would corrupt the display.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

// Prefixed returns a Logger that prepends a fixed component tag to every
// message, e.g. "[Publisher] message delivered...".
func Prefixed(tag string, log Logger) Logger {
	return &prefixLogger{tag: "[" + tag + "] ", inner: log}
}

type prefixLogger struct {
	tag   string
	inner Logger
}

func (p *prefixLogger) Info(msg string, args ...interface{}) {
	p.inner.Info(p.tag+msg, args...)
}

func (p *prefixLogger) Error(msg string, args ...interface{}) {
	p.inner.Error(p.tag+msg, args...)
}

func (p *prefixLogger) Debug(msg string, args ...interface{}) {
	p.inner.Debug(p.tag+msg, args...)
}
