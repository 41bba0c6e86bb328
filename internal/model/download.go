package model

import "time"

type Progress struct {
	Status     string
	Downloaded int64
	Total      int64
	Speed      float64
	ETA        time.Duration
}

// Percent returns -1 when the total size is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}

	return float64(p.Downloaded) * 100 / float64(p.Total)
}

func (p Progress) Finished() bool {
	return p.Status == "finished"
}

type DownloadRequest struct {
	Format   string
	Output   string
	Progress func(Progress)
}

type Tally struct {
	OK     int `json:"ok"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

const (
	EventDone   = "done"
	EventFailed = "failed"
)

// Event is published once per processed URL.
type Event struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Format string `json:"format,omitempty"`
	Path   string `json:"path,omitempty"`
	Remote string `json:"remote,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
