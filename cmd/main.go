package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"ytgrab/config"
	"ytgrab/internal/api/cli"
	"ytgrab/internal/client/bot"
	"ytgrab/internal/client/browser"
	"ytgrab/internal/client/dropbox"
	"ytgrab/internal/client/source"
	"ytgrab/internal/client/ytdlp"
	"ytgrab/internal/service"
	"ytgrab/internal/service/downloader"
	"ytgrab/internal/utils"
)

const (
	version = 0.1
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("version", version).Debug("ytgrab starting")

	root := cli.NewCommand(cfg, newDownloader, source.NewClient())

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("received shutdown signal")
		}
		fmt.Fprintln(os.Stderr, "[ERROR]", err)
		stop()
		os.Exit(1)
	}
}

func newDownloader(cfg *config.Config) (service.Downloader, func(), error) {
	extractor := ytdlp.NewClient(
		cfg.YtDLPPath,
		utils.YtDLPOptions{
			CookiesPath:         cfg.CookiesPath,
			Retries:             cfg.Retries,
			FragmentRetries:     cfg.FragmentRetries,
			ConcurrentFragments: cfg.ConcurrentFragments,
			SocketTimeout:       cfg.SocketTimeout,
			ForceIPv4:           cfg.ForceIPv4,
			JSRuntime:           cfg.JSRuntime,
			RemoteComponents:    cfg.RemoteComponents,
			PlayerClients:       cfg.PlayerClients,
			Verbose:             cfg.Verbose,
		},
		cfg.MergeOutputFormat,
		ytdlp.BinaryFileExecutor{},
	)

	opts := []downloader.Option{
		downloader.WithSingleExtractor(extractor.WithPlayerClients("android", "web").WithIgnoreNoFormats()),
	}
	cleanup := func() {}

	if cfg.BrowserUserData != "" {
		opts = append(opts, downloader.WithCookieRefresher(browser.NewClient(cfg.BrowserUserData)))
	}

	if cfg.DropBoxEnabled() {
		opts = append(opts, downloader.WithUploader(dropbox.NewClient(
			cfg.DropBoxRefreshToken,
			cfg.DropBoxAppKey,
			cfg.DropBoxAppSecret,
			cfg.DropBoxPath,
			cfg.DropBoxRemoveLocal,
		)))
	}

	if cfg.NatsDSN != "" {
		nc, err := bot.Connect(cfg.NatsDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to nats: %w", err)
		}

		cleanup = nc.Close
		opts = append(opts, downloader.WithNotifier(bot.NewClient(nc, cfg.NatsSubject)))
	}

	return downloader.NewService(
		cfg.OutputPath,
		cfg.CookiesPath,
		cfg.MaxHeight,
		extractor,
		downloader.NewPrinter(os.Stdout),
		opts...,
	), cleanup, nil
}
