package main

// @title           ISP Billing API
// @version         1.0
// @description     Subscriber billing and payment reconciliation service.

// @host      localhost:8888
// @BasePath  /

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/ispbill/internal/app"
)

func main() {
	os.Exit(run())
}

// run starts the app, waits for SIGINT/SIGTERM or an fx shutdown, and returns
// the process exit code.
func run() int {
	// the app logger may not exist yet when start fails
	fallback := zap.NewExample().Sugar()

	a := fx.New(app.Module)
	startCtx, cancelStart := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancelStart()
	if err := a.Start(startCtx); err != nil {
		fallback.Errorf("failed to start app: %v", err)
		return 1
	}

	sig := <-a.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancelStop()
	if err := a.Stop(stopCtx); err != nil {
		fallback.Errorf("failed to stop app: %v", err)
		return 1
	}
	return sig.ExitCode
}
