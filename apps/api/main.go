package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/pkg/errors"

	dig_container "github.com/trezcool/econspark/apps/api/di/dig"
	echoapi "github.com/trezcool/econspark/apps/api/echo"
	"github.com/trezcool/econspark/core"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(run))
	must(c.Invoke(func(dbCloser io.Closer, dbLoggerParam dig_container.DBLoggerParam) {
		if err := dbCloser.Close(); err != nil {
			dbLoggerParam.Logger.Error("failed to close", err)
		}
	}))
}

func run(conf *core.Config, logger core.Logger, server *echoapi.Server) {
	logger.Info(fmt.Sprintf("EconSpark API starting : version %q, env %q", conf.Build, conf.Env))
	defer logger.Info("EconSpark API stopped")

	if conf.Server.DebugHost != "" {
		startDebugServer(conf, logger)
	}

	if err := serve(conf, server); err != nil {
		logger.Fatal(err.Error(), err)
	}
}

// startDebugServer exposes /debug/pprof and /debug/vars on the debug host.
func startDebugServer(conf *core.Config, logger core.Logger) {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()
}

// serve blocks until the server fails or is asked to shut down, then drains it
// within conf.Server.ShutdownTimeout.
func serve(conf *core.Config, server *echoapi.Server) error {
	go server.Start()

	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "serving API")

	case <-server.ShutdownSignal():
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			if cerr := server.Close(); cerr != nil {
				return errors.Wrap(cerr, "force stopping server")
			}
			return errors.Wrap(err, "stopping server gracefully")
		}
		return nil
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
