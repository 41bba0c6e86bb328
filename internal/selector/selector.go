package selector

import (
	"fmt"
	"strings"

	"ytgrab/internal/model"
)

// Policy decides which transports a format may be fetched over.
type Policy int

const (
	// Strict accepts https only.
	Strict Policy = iota
	// Permissive additionally accepts m3u8 playlists.
	Permissive
)

var bannedVCodecs = []string{"av01", "av1"}

// Selection holds the winning format ids. An empty id means the pool was empty.
type Selection struct {
	VideoID       string
	AudioID       string
	ProgressiveID string
}

func (s Selection) HasPair() bool {
	return s.VideoID != "" && s.AudioID != ""
}

type PlanKind int

const (
	PlanPair PlanKind = iota
	PlanProgressive
	PlanFallback
)

func (k PlanKind) String() string {
	switch k {
	case PlanPair:
		return "pair"
	case PlanProgressive:
		return "progressive"
	default:
		return "fallback"
	}
}

// Plan is the format spec handed to the collaborator together with how it was reached.
type Plan struct {
	Kind      PlanKind
	Spec      string
	Selection Selection
}

type Selector struct {
	MaxHeight int
	Policy    Policy
}

func New(maxHeight int, policy Policy) Selector {
	return Selector{
		MaxHeight: maxHeight,
		Policy:    policy,
	}
}

type candidate struct {
	primary   float64
	secondary float64
	id        string
}

func (c candidate) beats(other candidate) bool {
	if c.primary != other.primary {
		return c.primary > other.primary
	}
	if c.secondary != other.secondary {
		return c.secondary > other.secondary
	}

	return c.id > other.id
}

type pool struct {
	best  candidate
	found bool
}

func (p *pool) offer(c candidate) {
	if !p.found || c.beats(p.best) {
		p.best = c
		p.found = true
	}
}

func (p *pool) winner() string {
	if !p.found {
		return ""
	}

	return p.best.id
}

// Select picks the best video-only, audio-only and progressive ids. It never
// fails: formats that do not qualify are skipped.
func (s Selector) Select(formats []model.Format) Selection {
	var video, audio, progressive pool

	for _, f := range formats {
		f = coerce(f)

		if f.FormatID == "" || !s.acceptsProtocol(f.Protocol) || banned(f.VCodec) {
			continue
		}

		withinHeight := f.Height == 0 || f.Height <= s.MaxHeight

		if (f.Ext == "mp4" || f.Ext == "webm") && f.HasVideo() && !f.HasAudio() && withinHeight {
			video.offer(candidate{primary: float64(f.Height), secondary: f.TBR, id: f.FormatID})
		}

		if f.Ext == "m4a" && f.HasAudio() && !f.HasVideo() {
			audio.offer(candidate{primary: f.ABR, secondary: f.TBR, id: f.FormatID})
		}

		if f.Ext == "mp4" && f.HasVideo() && f.HasAudio() && withinHeight {
			progressive.offer(candidate{primary: float64(f.Height), secondary: f.TBR, id: f.FormatID})
		}
	}

	return Selection{
		VideoID:       video.winner(),
		AudioID:       audio.winner(),
		ProgressiveID: progressive.winner(),
	}
}

// Plan composes the format spec: a video+audio pair, else a progressive
// file, else a capability query the collaborator resolves on its own.
func (s Selector) Plan(formats []model.Format) Plan {
	sel := s.Select(formats)

	switch {
	case sel.HasPair():
		return Plan{Kind: PlanPair, Spec: sel.VideoID + "+" + sel.AudioID, Selection: sel}
	case sel.ProgressiveID != "":
		return Plan{Kind: PlanProgressive, Spec: sel.ProgressiveID, Selection: sel}
	default:
		return Plan{Kind: PlanFallback, Spec: s.FallbackSpec(), Selection: sel}
	}
}

// FallbackSpec is the best available stream under the ceiling without AV1.
// The strict variant also insists on m4a audio.
func (s Selector) FallbackSpec() string {
	audio := "bestaudio"
	if s.Policy == Strict {
		audio = "bestaudio[ext=m4a]"
	}

	return fmt.Sprintf(
		"bestvideo[height<=%d][vcodec!*=av01][vcodec!*=av1]+%s/best[height<=%d]",
		s.MaxHeight, audio, s.MaxHeight,
	)
}

// SafeSpec is the broad query used for the one retry after a network failure.
func (s Selector) SafeSpec() string {
	return fmt.Sprintf("best[ext=mp4][height<=%d]/best[height<=%d]/best", s.MaxHeight, s.MaxHeight)
}

func (s Selector) acceptsProtocol(protocol string) bool {
	if strings.HasPrefix(protocol, "https") {
		return true
	}

	return s.Policy == Permissive && strings.HasPrefix(protocol, "m3u8")
}

// banned matches by substring, so unrelated codec names containing "av1"
// are rejected as well.
func banned(vcodec string) bool {
	for _, b := range bannedVCodecs {
		if strings.Contains(vcodec, b) {
			return true
		}
	}

	return false
}

// OnlyM3U8 reports whether every offered format is an m3u8_native stream,
// which usually means the site withheld the direct https formats.
func OnlyM3U8(formats []model.Format) bool {
	if len(formats) == 0 {
		return false
	}

	for _, f := range formats {
		if strings.ToLower(f.Protocol) != "m3u8_native" {
			return false
		}
	}

	return true
}

func coerce(f model.Format) model.Format {
	f.Ext = strings.ToLower(strings.TrimSpace(f.Ext))
	f.VCodec = strings.ToLower(strings.TrimSpace(f.VCodec))
	f.ACodec = strings.ToLower(strings.TrimSpace(f.ACodec))
	f.Protocol = strings.ToLower(strings.TrimSpace(f.Protocol))

	if f.Height < 0 {
		f.Height = 0
	}
	if f.TBR < 0 {
		f.TBR = 0
	}
	if f.ABR < 0 {
		f.ABR = 0
	}

	return f
}
