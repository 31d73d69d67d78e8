package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"simventas/internal/app"
	"simventas/internal/config"
	"simventas/internal/listener"
)

func main() {
	cfg, err := config.Load()
	must(err)

	a, err := app.New(cfg)
	must(err)
	defer a.Close()

	fetch, err := a.Fetcher(cfg.MailListenerProvider)
	must(err)
	svc := listener.NewService(fetch, a.Processor(), a.Sales, cfg, a.Logger.Named("listener"))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
