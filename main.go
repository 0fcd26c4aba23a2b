package main

import (
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/cmd"
)

// main is the entry point of the application. Logging is configured by
// core's package init (METRICSPACE_LOG); this only wires interrupt
// handling and the CLI's exit code.
func main() {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt)
	go listenForInterrupt(stopChan)

	os.Exit(cmd.Execute())
}

// listenForInterrupt exits the program when an interrupt signal is received.
func listenForInterrupt(stopChan chan os.Signal) {
	<-stopChan
	log.Fatal().Msg("interrupt signal received, exiting")
}
