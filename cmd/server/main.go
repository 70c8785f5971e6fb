package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"

	"github.com/groceria/groceria-auth/config"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Debug),
		glog.WithName("groceria"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := gconfig.New(&config.BaseConfig{},
		gconfig.WithLoader(
			gconfig.OptionalProvider(gconfig.FileProvider[*config.BaseConfig]("config/app.json")),
			gconfig.EnvProvider[*config.BaseConfig]("GROCERIA_", "__", gconfig.DefaultOrderFlag),
		),
	)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	if err := cfg.Raw().Validate(); err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybePrettyJSON(cfg.Raw()))
	fmt.Println("============")

	app := &App{
		config: cfg.Raw(),
		logger: lgr,
	}
	defer app.Close()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithRevocationCache(ctx, app); err != nil {
		panic(err)
	}

	WithMailer(app)

	if err := WithHTTPServer(app); err != nil {
		panic(err)
	}

	WithAccounts(app)

	go func() {
		if err := app.srv.Serve(app.config.GetServer().GetAddress()); err != nil {
			app.GetLogger("http").Error("server stopped", "error", err)
		}
	}()

	sig := WaitExitSignal()
	app.GetLogger("app").Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, app.config.GetServer().GetShutdownTimeout())
	defer cancel()

	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		app.GetLogger("http").Error("shutdown failed", "error", err)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
