//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"
)

func init() {
	notifyExtraSignals = func(sigChan chan<- os.Signal) {
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGTSTP)
	}

	getShutdownMessage = func(sig os.Signal) string {
		if sig == syscall.SIGTSTP {
			return "Received suspend signal (Ctrl+Z), stopping..."
		}
		return "Received interrupt signal, stopping..."
	}
}
