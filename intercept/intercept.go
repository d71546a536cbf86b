// Package intercept defines objects and related functions to monitor requests to shutdown the application
package intercept

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	bg "github.com/SSSOCPaulCote/blunderguard"
	"github.com/rs/zerolog"
)

const (
	ErrAlreadyInitialized = bg.Error("interceptor already initialized")
)

var (
	started int32
)

// Interceptor is the object controlling application shutdown requests
type Interceptor struct {
	interruptChannel       chan os.Signal
	shutdownChannel        chan struct{}
	shutdownRequestChannel chan struct{}
	quit                   chan struct{}
	logger                 zerolog.Logger
}

// mainInterruptHandler listens for SIGINT (Ctrl+C) signals on the interruptChannel and shutdown requests on the
// shutdownRequestChannel.
func (interceptor *Interceptor) mainInterruptHandler() {
	var isShutdown bool
	shutdown := func() {
		if isShutdown {
			interceptor.logger.Info().Msg("Already shutting down...")
			return
		}
		isShutdown = true
		interceptor.logger.Info().Msg("Shutting down...")
		close(interceptor.quit)
	}
	for {
		select {
		case sig := <-interceptor.interruptChannel:
			interceptor.logger.Info().Msgf("Received %v", sig)
			shutdown()
		case <-interceptor.shutdownRequestChannel:
			interceptor.logger.Info().Msg("Received shutdown request.")
			shutdown()
		case <-interceptor.quit:
			interceptor.logger.Info().Msg("Gracefully shutting down.")
			signal.Stop(interceptor.interruptChannel)
			atomic.StoreInt32(&started, 0)
			close(interceptor.shutdownChannel)
			return
		}
	}
}

// RequestShutdown initiates a graceful shutdown from the application.
func (interceptor *Interceptor) RequestShutdown() {
	select {
	case interceptor.shutdownRequestChannel <- struct{}{}:
	case <-interceptor.quit:
	}
}

// ShutdownChannel returns the channel that will be closed once the main
// interrupt handler has exited.
func (c *Interceptor) ShutdownChannel() <-chan struct{} {
	return c.shutdownChannel
}

// InitInterceptor initializes the shutdown and interrupt interceptor
func InitInterceptor(logger zerolog.Logger) (*Interceptor, error) {
	if !atomic.CompareAndSwapInt32(&started, 0, 1) {
		return nil, ErrAlreadyInitialized
	}
	interceptor := &Interceptor{
		interruptChannel:       make(chan os.Signal, 1),
		shutdownChannel:        make(chan struct{}),
		shutdownRequestChannel: make(chan struct{}),
		quit:                   make(chan struct{}),
		logger:                 logger,
	}
	signalsToCatch := []os.Signal{
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
	signal.Notify(interceptor.interruptChannel, signalsToCatch...)
	go interceptor.mainInterruptHandler()
	return interceptor, nil
}
