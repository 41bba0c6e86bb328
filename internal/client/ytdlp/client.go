package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"ytgrab/internal/model"
	"ytgrab/internal/utils"
)

type Client struct {
	binPath     string
	options     utils.YtDLPOptions
	mergeFormat string
	executor    Executor
}

func NewClient(
	binPath string,
	options utils.YtDLPOptions,
	mergeFormat string,
	executor Executor,
) *Client {
	return &Client{
		binPath:     binPath,
		options:     options,
		mergeFormat: mergeFormat,
		executor:    executor,
	}
}

// WithPlayerClients returns a copy of the client that asks the extractor for
// the given player clients, unless clients were configured explicitly.
func (c *Client) WithPlayerClients(clients ...string) *Client {
	clone := *c
	if len(clone.options.PlayerClients) == 0 {
		clone.options.PlayerClients = clients
	}

	return &clone
}

// WithIgnoreNoFormats returns a copy of the client whose probe still returns
// the info JSON when none of the listed formats can be selected.
func (c *Client) WithIgnoreNoFormats() *Client {
	clone := *c
	clone.options.IgnoreNoFormats = true

	return &clone
}

type rawInfo struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Formats []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID string  `json:"format_id"`
	Ext      string  `json:"ext"`
	VCodec   string  `json:"vcodec"`
	ACodec   string  `json:"acodec"`
	Height   float64 `json:"height"`
	TBR      float64 `json:"tbr"`
	ABR      float64 `json:"abr"`
	Protocol string  `json:"protocol"`
}

func (f rawFormat) toFormat() model.Format {
	return model.Format{
		FormatID: f.FormatID,
		Ext:      strings.ToLower(f.Ext),
		VCodec:   codec(f.VCodec),
		ACodec:   codec(f.ACodec),
		Height:   int(nonNegative(f.Height)),
		TBR:      nonNegative(f.TBR),
		ABR:      nonNegative(f.ABR),
		Protocol: strings.ToLower(f.Protocol),
	}
}

func codec(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return model.CodecNone
	}

	return value
}

func nonNegative(value float64) float64 {
	if value < 0 {
		return 0
	}

	return value
}

func (c *Client) Probe(ctx context.Context, url string) (*model.Info, error) {
	args := utils.ProbeArgs(c.options, url)

	log.WithFields(log.Fields{
		"url":  url,
		"args": args,
	}).Debug("probing formats")

	output, err := c.executor.Command(ctx, c.binPath, args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, &Error{Op: "probe", URL: url, Kind: ErrProbe, Detail: lastError(stderrOf(err)), Err: err}
	}

	var raw rawInfo
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, &Error{Op: "probe", URL: url, Kind: ErrProbe, Detail: "malformed info json", Err: err}
	}

	info := &model.Info{
		ID:      raw.ID,
		Title:   raw.Title,
		Formats: make([]model.Format, 0, len(raw.Formats)),
	}

	for _, f := range raw.Formats {
		if f.FormatID == "" {
			continue
		}
		info.Formats = append(info.Formats, f.toFormat())
	}

	return info, nil
}

// Download fetches url with the requested format spec and returns the final
// file path when yt-dlp reported one.
func (c *Client) Download(ctx context.Context, url string, req model.DownloadRequest) (string, error) {
	args := utils.DownloadArgs(c.options, url, req.Format, req.Output, c.mergeFormat)

	logFields := log.Fields{
		"url":    url,
		"format": req.Format,
		"output": req.Output,
	}

	log.WithFields(logFields).Debug("download start")

	var filePath string

	err := c.executor.Command(ctx, c.binPath, args...).Stream(func(line string) {
		switch {
		case strings.HasPrefix(line, utils.ProgressMarker):
			progress, ok := ParseProgress(line)
			if ok && req.Progress != nil {
				req.Progress(progress)
			}
		case strings.HasPrefix(line, utils.FileMarker):
			filePath = strings.TrimSpace(strings.TrimPrefix(line, utils.FileMarker))
		default:
			log.WithFields(logFields).Debug(line)
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		stderr := stderrOf(err)
		return "", &Error{Op: "download", URL: url, Kind: classify(stderr), Detail: lastError(stderr), Err: err}
	}

	log.WithFields(logFields).WithField("path", filePath).Debug("download end")

	return filePath, nil
}

func stderrOf(err error) string {
	var runErr *RunError
	if errors.As(err, &runErr) && runErr.Stderr != "" {
		return runErr.Stderr
	}

	return err.Error()
}

// ParseProgress reads a line printed by the progress template.
func ParseProgress(line string) (model.Progress, bool) {
	fields := strings.Split(strings.TrimPrefix(line, utils.ProgressMarker), "|")
	if len(fields) != 5 {
		return model.Progress{}, false
	}

	return model.Progress{
		Status:     strings.TrimSpace(fields[0]),
		Downloaded: int64(number(fields[1])),
		Total:      int64(number(fields[2])),
		Speed:      number(fields[3]),
		ETA:        time.Duration(number(fields[4])) * time.Second,
	}, true
}

// number treats yt-dlp's "NA" and anything unparsable as zero.
func number(field string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	return value
}
