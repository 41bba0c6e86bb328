package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ytgrab/config"
	"ytgrab/internal/service"
)

var ErrNoURLs = errors.New("no urls given")

// Factory builds the downloader once flags have been applied to cfg. The
// returned func releases whatever the downloader holds open.
type Factory func(cfg *config.Config) (service.Downloader, func(), error)

type ListLoader interface {
	Load(ctx context.Context, location string) ([]string, error)
}

type API struct {
	cfg     *config.Config
	factory Factory
	lists   ListLoader
}

func NewCommand(cfg *config.Config, factory Factory, lists ListLoader) *cobra.Command {
	api := &API{
		cfg:     cfg,
		factory: factory,
		lists:   lists,
	}

	root := &cobra.Command{
		Use:           "ytgrab",
		Short:         "Downloads videos at the best resolution under a ceiling, without AV1",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ConfigureLogging(cfg.LogLevel, cfg.Verbose)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "Output directory, created when missing.")
	flags.IntVar(&cfg.MaxHeight, "max-height", cfg.MaxHeight, "Highest accepted vertical resolution.")
	flags.StringVar(&cfg.CookiesPath, "cookies", cfg.CookiesPath, "Netscape cookie file handed to yt-dlp.")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Print yt-dlp diagnostics.")

	root.AddCommand(api.batchCommand(), api.singleCommand())

	return root
}

func (api *API) batchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "batch [url...]",
		Short:   "Downloads a list of videos one after another",
		Example: `ytgrab batch --list urls.txt "[https://youtu.be/abc](https://youtu.be/abc)" youtube.com/shorts/xyz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.batch(cmd.Context(), args)
		},
	}

	cmd.Flags().StringVarP(&api.cfg.URLList, "list", "l", api.cfg.URLList, "File or http(s) URL with one link per line.")

	return cmd
}

func (api *API) singleCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "single <url>",
		Short:   "Downloads one video, retrying once on network failures",
		Example: `ytgrab single https://youtu.be/awMmB-dIgNU`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.single(cmd.Context(), args[0])
		},
	}
}

func (api *API) batch(ctx context.Context, args []string) error {
	urls, err := api.collect(ctx, args)
	if err != nil {
		return err
	}

	downloader, cleanup, err := api.factory(api.cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	tally, err := downloader.DownloadBatch(ctx, urls)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"ok":     tally.OK,
		"failed": tally.Failed,
		"total":  tally.Total,
	}).Info("batch finished")

	return nil
}

func (api *API) single(ctx context.Context, url string) error {
	downloader, cleanup, err := api.factory(api.cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return downloader.DownloadOne(ctx, url)
}

// collect gathers targets from the environment, the list and the arguments, in that order.
func (api *API) collect(ctx context.Context, args []string) ([]string, error) {
	urls := append([]string{}, api.cfg.URLs...)

	if api.cfg.URLList != "" {
		entries, err := api.lists.Load(ctx, api.cfg.URLList)
		if err != nil {
			return nil, fmt.Errorf("load url list %s: %w", api.cfg.URLList, err)
		}
		urls = append(urls, entries...)
	}

	urls = append(urls, args...)

	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	return urls, nil
}

// ConfigureLogging sets the logrus level; verbose forces debug.
func ConfigureLogging(level string, verbose bool) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
		return nil
	}

	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return err
	}

	log.SetLevel(parsed)

	return nil
}
