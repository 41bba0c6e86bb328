package ytdlp

import (
	"errors"
	"strings"
)

var (
	ErrProbe        = errors.New("failed to fetch formats")
	ErrAccessDenied = errors.New("media request rejected")
	ErrTransient    = errors.New("network failure while downloading")
	ErrFailed       = errors.New("download failed")
)

var (
	accessDeniedMarkers = []string{"http error 403", "requested format is not available"}
	transientMarkers    = []string{"downloaded file is empty", "unexpected_eof_while_reading", "ssl", "incomplete"}
)

type Error struct {
	Op     string
	URL    string
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + " " + e.URL + ": " + e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// classify maps a failed download to an error kind by what yt-dlp reported.
func classify(stderr string) error {
	msg := strings.ToLower(stderr)

	for _, marker := range accessDeniedMarkers {
		if strings.Contains(msg, marker) {
			return ErrAccessDenied
		}
	}

	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return ErrTransient
		}
	}

	return ErrFailed
}

// lastError returns the last "ERROR:" line, or the last non-empty line.
func lastError(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}

	return strings.TrimSpace(lines[len(lines)-1])
}
