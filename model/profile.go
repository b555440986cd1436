package model

import (
	"github.com/jmchacon/beeb/clock"
	"github.com/jmchacon/beeb/irq"
	"github.com/jmchacon/beeb/keyboard"
	"github.com/jmchacon/beeb/memory"
	"github.com/jmchacon/beeb/pixel"
)

// Profile is the common surface both hardware configurations (B, BPlus)
// present to package machine: a memory.Bank standing in for the whole
// address space, the ordered set of peripheral clock.Bindings the
// machine's scheduler dispatches alongside its CPU binding, the IRQ
// source a CPU core polls, and the video output queue / ROM loading
// entry points the server and renderer packages drive.
type Profile interface {
	memory.Bank
	memory.Peeker

	Reset()
	Bindings() []clock.Binding
	IRQSender() irq.Sender
	Regions() []RegionDescriptor

	EnableVideoOutput(capacity int)
	DisableVideoOutput()
	VideoOutputEnabled() bool
	VideoQueue() *pixel.Queue

	KeyMatrix() *keyboard.Matrix

	LoadMOS(data []uint8) (truncated bool)
	LoadBasic(data []uint8) (truncated bool)
	LoadDFS(data []uint8) (truncated bool)
}

var (
	_ Profile = (*B)(nil)
	_ Profile = (*BPlus)(nil)
)
