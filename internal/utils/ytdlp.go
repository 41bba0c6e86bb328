package utils

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	ProgressMarker = "[progress]"
	FileMarker     = "[file]"

	progressTemplate = "download:" + ProgressMarker +
		"%(progress.status)s|%(progress.downloaded_bytes)s|" +
		"%(progress.total_bytes,progress.total_bytes_estimate)s|" +
		"%(progress.speed)s|%(progress.eta)s"
	printFilepath = "after_move:" + FileMarker + "%(filepath)s"
)

// YtDLPOptions are passed through to every yt-dlp invocation.
type YtDLPOptions struct {
	CookiesPath         string
	Retries             int
	FragmentRetries     int
	ConcurrentFragments int
	SocketTimeout       time.Duration
	ForceIPv4           bool
	JSRuntime           string
	RemoteComponents    string
	PlayerClients       []string
	Verbose             bool
	// IgnoreNoFormats keeps the probe from failing when no format is selectable.
	IgnoreNoFormats bool
}

func (o YtDLPOptions) baseArgs() []string {
	args := []string{"--no-playlist"}

	if o.Retries > 0 {
		args = append(args, "--retries", strconv.Itoa(o.Retries))
	}
	if o.FragmentRetries > 0 {
		args = append(args, "--fragment-retries", strconv.Itoa(o.FragmentRetries))
	}
	if o.ConcurrentFragments > 0 {
		args = append(args, "--concurrent-fragments", strconv.Itoa(o.ConcurrentFragments))
	}
	if o.SocketTimeout > 0 {
		args = append(args, "--socket-timeout", strconv.Itoa(int(o.SocketTimeout.Seconds())))
	}
	if o.ForceIPv4 {
		args = append(args, "--force-ipv4")
	}
	if o.CookiesPath != "" {
		args = append(args, "--cookies", o.CookiesPath)
	}
	if o.JSRuntime != "" {
		args = append(args, "--js-runtimes", o.JSRuntime)
	}
	if o.RemoteComponents != "" {
		args = append(args, "--remote-components", o.RemoteComponents)
	}
	if len(o.PlayerClients) > 0 {
		args = append(args, "--extractor-args", "youtube:player_client="+strings.Join(o.PlayerClients, ","))
	}

	return args
}

// ProbeArgs asks yt-dlp for the info JSON of url without downloading it.
func ProbeArgs(opts YtDLPOptions, url string) []string {
	args := append(opts.baseArgs(), "--dump-single-json", "--skip-download")
	if opts.IgnoreNoFormats {
		args = append(args, "--ignore-no-formats-error")
	}

	return append(args, "--", url)
}

// DownloadArgs downloads url using the format spec into the output template.
func DownloadArgs(opts YtDLPOptions, url, format, output, mergeFormat string) []string {
	args := append(opts.baseArgs(), "-f", format, "-o", output)

	if mergeFormat != "" {
		args = append(args, "--merge-output-format", mergeFormat)
	}

	args = append(args,
		"--newline",
		"--progress",
		"--progress-template", progressTemplate,
		"--print", printFilepath,
		"--no-simulate",
	)

	if !opts.Verbose {
		args = append(args, "--quiet")
	}

	return append(args, "--", url)
}

// OutputTemplate builds "<dir>/<title>.%(ext)s" with '%' in the title escaped.
func OutputTemplate(dir, title string) string {
	return filepath.Join(dir, strings.ReplaceAll(title, "%", "%%")+".%(ext)s")
}
