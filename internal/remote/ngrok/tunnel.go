package ngrok

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/hectorgimenez/tftbot/internal/config"
	"github.com/hectorgimenez/tftbot/internal/event"
	ngrok "golang.ngrok.com/ngrok"
	ngrokcfg "golang.ngrok.com/ngrok/config"
)

type Options struct {
	LocalAddr     string
	Authtoken     string
	Region        string
	Domain        string
	BasicAuthUser string
	BasicAuthPass string
	SendURL       bool
}

// OptionsFromConfig exposes the local status server.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		LocalAddr:     fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port),
		Authtoken:     cfg.Ngrok.Authtoken,
		Region:        cfg.Ngrok.Region,
		Domain:        cfg.Ngrok.Domain,
		BasicAuthUser: cfg.Ngrok.BasicAuthUser,
		BasicAuthPass: cfg.Ngrok.BasicAuthPass,
		SendURL:       cfg.Ngrok.SendURL,
	}
}

type Tunnel struct {
	forwarder ngrok.Forwarder
}

func (o Options) backend() (*url.URL, error) {
	if o.LocalAddr == "" {
		return nil, errors.New("ngrok local address is required")
	}

	return url.Parse(o.LocalAddr)
}

func (o Options) endpoint() []ngrokcfg.HTTPEndpointOption {
	opts := make([]ngrokcfg.HTTPEndpointOption, 0, 2)
	if o.Domain != "" {
		opts = append(opts, ngrokcfg.WithDomain(o.Domain))
	}
	if o.BasicAuthUser != "" && o.BasicAuthPass != "" {
		opts = append(opts, ngrokcfg.WithBasicAuth(o.BasicAuthUser, o.BasicAuthPass))
	}

	return opts
}

func Start(ctx context.Context, opts Options) (*Tunnel, error) {
	backend, err := opts.backend()
	if err != nil {
		return nil, err
	}

	connectOpts := make([]ngrok.ConnectOption, 0, 2)
	if opts.Authtoken != "" {
		connectOpts = append(connectOpts, ngrok.WithAuthtoken(opts.Authtoken))
	} else if os.Getenv("NGROK_AUTHTOKEN") != "" {
		connectOpts = append(connectOpts, ngrok.WithAuthtokenFromEnv())
	}
	if opts.Region != "" {
		connectOpts = append(connectOpts, ngrok.WithRegion(opts.Region))
	}

	fwd, err := ngrok.ListenAndForward(ctx, backend, ngrokcfg.HTTPEndpoint(opts.endpoint()...), connectOpts...)
	if err != nil {
		return nil, err
	}

	return &Tunnel{forwarder: fwd}, nil
}

// Serve keeps the tunnel open until ctx is done and announces its URL when asked to.
func Serve(ctx context.Context, opts Options, logger *slog.Logger, send func(event.Event)) error {
	t, err := Start(ctx, opts)
	if err != nil {
		return fmt.Errorf("starting ngrok tunnel: %w", err)
	}
	defer func() {
		if err := t.Close(); err != nil {
			logger.Warn("Failed to close ngrok tunnel", slog.Any("error", err))
		}
	}()

	logger.Info("ngrok tunnel established", slog.String("url", t.URL()))
	if opts.SendURL && send != nil {
		send(event.NgrokTunnel(t.URL()))
	}

	<-ctx.Done()
	return nil
}

func (t *Tunnel) URL() string {
	if t == nil || t.forwarder == nil {
		return ""
	}
	return t.forwarder.URL()
}

func (t *Tunnel) Close() error {
	if t == nil || t.forwarder == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return t.forwarder.CloseWithContext(ctx)
}
