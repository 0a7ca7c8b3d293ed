package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/umbrella-client/internal/application/catalog"
	"github.com/jhoicas/umbrella-client/internal/application/movement"
	"github.com/jhoicas/umbrella-client/internal/application/session"
	"github.com/jhoicas/umbrella-client/internal/application/users"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/apiclient"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/credstore"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/navigation"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/notify"
	"github.com/jhoicas/umbrella-client/internal/interfaces/cli"
	"github.com/jhoicas/umbrella-client/pkg/config"
	"github.com/jhoicas/umbrella-client/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuração: " + err.Error() + "\n")
		return cli.ExitError
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "umbrella",
		Out:     os.Stderr,
	})

	kv, err := credstore.NewFileStore(cfg.Session.File)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.Session.File).Msg("abrir archivo de sesión")
		return cli.ExitError
	}
	creds := credstore.NewCredentials(kv)

	// El gateway existe antes que la "pantalla"; la consola se adjunta cuando el CLI está listo.
	nav := navigation.NewGateway()
	reg := prometheus.NewRegistry()

	client := apiclient.New(apiclient.Options{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		Credentials: creds,
		Navigator:   nav,
		Notifier:    notify.NewConsole(os.Stderr),
		Logger:      log,
		Metrics:     apiclient.NewMetrics(reg),
	})
	catalogSvc := catalog.NewService(client)
	app := &cli.App{
		Session:  session.NewService(client, creds, nav, client, log),
		Catalog:  catalogSvc,
		Movement: movement.NewWorkflowEngine(client, catalogSvc, log),
		Users:    users.NewService(client),
		Out:      os.Stdout,
		Err:      os.Stderr,
	}
	nav.Attach(navigation.NewConsole(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := app.Run(ctx, os.Args[1:])
	logMetrics(log, reg)
	return code
}

// logMetrics resume las métricas del transporte en nivel debug.
func logMetrics(log *logger.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		log.Debug().Err(err).Msg("leer métricas")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			ev := log.Debug().Str("metric", mf.GetName())
			for _, l := range m.GetLabel() {
				ev = ev.Str(l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				ev = ev.Float64("value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				ev = ev.Uint64("count", m.GetHistogram().GetSampleCount())
			}
			ev.Msg("métrica")
		}
	}
}
