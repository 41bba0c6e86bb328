package downloader

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ytgrab/internal/client/ytdlp"
	"ytgrab/internal/model"
	"ytgrab/internal/selector"
	"ytgrab/internal/service"
	"ytgrab/internal/utils"
)

var ErrInvalidURL = errors.New("not a usable url")

type Extractor interface {
	Probe(ctx context.Context, url string) (*model.Info, error)
	Download(ctx context.Context, url string, req model.DownloadRequest) (string, error)
}

type Uploader interface {
	UploadFile(localPath string) (string, error)
	GetSharingLink() (string, error)
}

type Notifier interface {
	SendEvent(event model.Event) error
}

type CookieRefresher interface {
	RefreshCookies(ctx context.Context, path string) error
}

type Option func(*Service)

// WithSingleExtractor sets the extractor used by DownloadOne.
func WithSingleExtractor(extractor Extractor) Option {
	return func(srv *Service) {
		srv.singleExtractor = extractor
	}
}

func WithUploader(uploader Uploader) Option {
	return func(srv *Service) {
		srv.uploader = uploader
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(srv *Service) {
		srv.notifier = notifier
	}
}

func WithCookieRefresher(refresher CookieRefresher) Option {
	return func(srv *Service) {
		srv.cookies = refresher
	}
}

type Service struct {
	outputPath      string
	cookiesPath     string
	maxHeight       int
	extractor       Extractor
	singleExtractor Extractor
	uploader        Uploader
	notifier        Notifier
	cookies         CookieRefresher
	printer         *Printer
	uploaded        int
}

func NewService(
	outputPath string,
	cookiesPath string,
	maxHeight int,
	extractor Extractor,
	printer *Printer,
	opts ...Option,
) service.Downloader {
	srv := &Service{
		outputPath:      outputPath,
		cookiesPath:     cookiesPath,
		maxHeight:       maxHeight,
		extractor:       extractor,
		singleExtractor: extractor,
		printer:         printer,
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

type job struct {
	url       string
	index     int
	total     int
	extractor Extractor
	selector  selector.Selector
	// safeRetry allows one more attempt with a broad query after a network failure.
	safeRetry bool
	warnM3U8  bool
}

type outcome struct {
	title  string
	format string
	path   string
	remote string
}

// DownloadBatch processes urls one after another. A failing URL is counted
// and reported, the rest of the list still runs.
func (srv *Service) DownloadBatch(ctx context.Context, rawURLs []string) (model.Tally, error) {
	urls := utils.NormalizeURLs(rawURLs)
	tally := model.Tally{Total: len(urls)}

	if err := srv.prepare(ctx); err != nil {
		return tally, err
	}

	strict := selector.New(srv.maxHeight, selector.Strict)

	for i, url := range urls {
		if ctx.Err() != nil {
			log.WithField("remaining", len(urls)-i).Warn("interrupted, skipping the rest of the list")
			break
		}

		err := srv.process(ctx, job{
			url:       url,
			index:     i + 1,
			total:     len(urls),
			extractor: srv.extractor,
			selector:  strict,
		})
		if err != nil {
			tally.Failed++

			log.WithFields(log.Fields{
				"url":   url,
				"index": i + 1,
			}).WithError(err).Error("download failed")
			srv.printer.Failed(url, err)

			continue
		}

		tally.OK++
	}

	srv.printer.Summary(tally)
	srv.share()

	return tally, nil
}

// DownloadOne fetches a single URL. Network failures get one more attempt
// with a broad query; everything else is returned with a hint.
func (srv *Service) DownloadOne(ctx context.Context, rawURL string) error {
	url := utils.NormalizeURL(rawURL)
	if url == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	if err := srv.prepare(ctx); err != nil {
		return err
	}

	err := srv.process(ctx, job{
		url:       url,
		index:     1,
		total:     1,
		extractor: srv.singleExtractor,
		selector:  selector.New(srv.maxHeight, selector.Permissive),
		safeRetry: true,
		warnM3U8:  true,
	})
	if err != nil {
		return srv.explain(err)
	}

	return nil
}

func (srv *Service) prepare(ctx context.Context) error {
	if err := utils.EnsureDir(srv.outputPath); err != nil {
		return fmt.Errorf("create output directory %s: %w", srv.outputPath, err)
	}

	if srv.cookies != nil && srv.cookiesPath != "" {
		if err := srv.cookies.RefreshCookies(ctx, srv.cookiesPath); err != nil {
			log.WithError(err).Warn("cookie refresh failed, using the existing cookie file")
		}
	}

	return nil
}

func (srv *Service) process(ctx context.Context, j job) error {
	result, err := srv.fetch(ctx, j)

	event := model.Event{
		URL:    j.url,
		Title:  result.title,
		Format: result.format,
		Path:   result.path,
		Remote: result.remote,
		Status: model.EventDone,
	}
	if err != nil {
		event.Status = model.EventFailed
		event.Error = err.Error()
	}
	srv.notify(event)

	if err == nil && result.remote != "" {
		srv.uploaded++
	}

	return err
}

func (srv *Service) fetch(ctx context.Context, j job) (outcome, error) {
	srv.printer.Header(j.index, j.total, j.url)

	info, err := j.extractor.Probe(ctx, j.url)
	if err != nil {
		return outcome{}, err
	}

	result := outcome{title: utils.Title(info.Title, j.index)}

	if j.warnM3U8 && selector.OnlyM3U8(info.Formats) {
		srv.printer.Warn("only m3u8 streams were offered, usually a bot check or an unsolved challenge; some formats are missing")
	}

	plan := j.selector.Plan(info.Formats)
	srv.printer.Picked(plan, srv.maxHeight)

	log.WithFields(log.Fields{
		"url":    j.url,
		"title":  result.title,
		"plan":   plan.Kind.String(),
		"format": plan.Spec,
	}).Debug("format chosen")

	result.format = plan.Spec
	result.path, err = srv.download(ctx, j, plan.Spec, result.title)

	if err != nil && j.safeRetry && errors.Is(err, ytdlp.ErrTransient) {
		srv.printer.Warn("network failure on the chosen format, retrying with a safe fallback")

		result.format = j.selector.SafeSpec()
		result.path, err = srv.download(ctx, j, result.format, result.title)
	}
	if err != nil {
		return result, err
	}

	if result.path == "" {
		result.path, err = utils.FindFileByName(srv.outputPath, result.title)
		if err != nil {
			log.WithField("title", result.title).WithError(err).Warn("downloaded file not located")
		}
	}

	if srv.uploader != nil && result.path != "" {
		result.remote, err = srv.uploader.UploadFile(result.path)
		if err != nil {
			return result, fmt.Errorf("upload %s: %w", result.path, err)
		}
	}

	srv.printer.Done(result.title)

	return result, nil
}

func (srv *Service) download(ctx context.Context, j job, format string, title string) (string, error) {
	return j.extractor.Download(ctx, j.url, model.DownloadRequest{
		Format:   format,
		Output:   utils.OutputTemplate(srv.outputPath, title),
		Progress: srv.printer.Progress,
	})
}

func (srv *Service) share() {
	if srv.uploader == nil || srv.uploaded == 0 {
		return
	}

	link, err := srv.uploader.GetSharingLink()
	if err != nil {
		log.WithError(err).Warn("sharing link not created")
		return
	}

	log.WithField("link", link).Info("uploads shared")
}

func (srv *Service) notify(event model.Event) {
	if srv.notifier == nil {
		return
	}

	if err := srv.notifier.SendEvent(event); err != nil {
		log.WithField("url", event.URL).WithError(err).Warn("event not published")
	}
}

func (srv *Service) explain(err error) error {
	switch {
	case errors.Is(err, ytdlp.ErrProbe):
		return fmt.Errorf("could not fetch formats, check the cookies and export %s again: %w", srv.cookieFile(), err)
	case errors.Is(err, ytdlp.ErrAccessDenied):
		return fmt.Errorf("the media stream was rejected (403), cookies are usually stale or a token is missing; export %s again from the same browser profile: %w", srv.cookieFile(), err)
	default:
		return err
	}
}

func (srv *Service) cookieFile() string {
	if srv.cookiesPath == "" {
		return "a cookies.txt"
	}

	return srv.cookiesPath
}
