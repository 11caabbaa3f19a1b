package app

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/bookverse-storefront/internal/controller"
	"github.com/xenking/bookverse-storefront/internal/domain/auth"
	"github.com/xenking/bookverse-storefront/internal/storage/localfs"
	"github.com/xenking/bookverse-storefront/internal/storage/restapi"
	"github.com/xenking/bookverse-storefront/internal/view"
)

// ErrCommandFailed is returned when the command ran but the action failed.
// The user-facing message has already been printed.
var ErrCommandFailed = errors.New("command failed")

// IO holds the terminal streams of a command.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run builds the client with telemetry from m and runs the command in args.
// It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, args []string) error {
	lg.Debug("Initializing",
		zap.String("api", cfg.APIBaseURL),
		zap.String("token_file", cfg.TokenFile),
	)

	var opts []restapi.Option
	if m != nil {
		opts = append(opts,
			restapi.WithTracerProvider(m.TracerProvider()),
			restapi.WithMeterProvider(m.MeterProvider()),
		)
	}
	return Execute(ctx, cfg, args, IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, opts...)
}

// Execute runs one command against the configured backend.
func Execute(ctx context.Context, cfg *Config, args []string, stdio IO, opts ...restapi.Option) error {
	p := prompter{in: bufio.NewReader(stdio.In), out: stdio.Out}

	action, err := parseCommand(args, p)
	if err != nil {
		fmt.Fprintln(stdio.Err, err)
		fmt.Fprint(stdio.Err, usage)
		return err
	}

	gate := auth.NewGate(localfs.NewTokenStore(cfg.TokenFile))

	opts = append([]restapi.Option{restapi.WithTimeout(cfg.Timeout)}, opts...)
	client, err := restapi.NewClient(cfg.APIBaseURL, gate, opts...)
	if err != nil {
		return errors.Wrap(err, "create api client")
	}

	ctrl := controller.New(
		controller.Config{ImageBaseURL: cfg.ImageBaseURL},
		gate,
		restapi.NewBookRepository(client),
		restapi.NewAccountRepository(client),
		restapi.NewOrderRepository(client),
		restapi.NewCartRepository(client),
	)

	renderer, err := view.NewTextRenderer()
	if err != nil {
		return err
	}

	out := ctrl.Dispatch(ctx, action)
	return present(renderer, stdio, out, cfg.Debug)
}

// present prints the outcome of a dispatched action.
func present(r view.Renderer, stdio IO, out controller.Outcome, debug bool) error {
	if debug {
		fmt.Fprintln(stdio.Err, "request:", out.RequestID)
		for _, e := range out.Effects {
			fmt.Fprintln(stdio.Err, "effect:", e)
		}
	}
	if out.Notice != "" {
		fmt.Fprintln(stdio.Out, out.Notice)
	}
	var page bytes.Buffer
	if out.View != nil {
		if err := r.Render(&page, out.View); err != nil {
			return errors.Wrap(err, "render")
		}
		if _, err := stdio.Out.Write(page.Bytes()); err != nil {
			return errors.Wrap(err, "write")
		}
	}
	if out.Failed() {
		// Some views already carry the message.
		if !strings.Contains(page.String(), out.Error) {
			fmt.Fprintln(stdio.Err, out.Error)
		}
		return ErrCommandFailed
	}
	return nil
}
