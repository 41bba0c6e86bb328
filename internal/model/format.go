package model

// CodecNone marks a stream that carries no track of that kind.
const CodecNone = "none"

// Format describes one downloadable stream variant reported by a probe.
// Fields are coerced once when decoded: strings are lowercased, a missing
// codec becomes CodecNone and missing numbers are zero.
type Format struct {
	FormatID string  `json:"format_id"`
	Ext      string  `json:"ext"`
	VCodec   string  `json:"vcodec"`
	ACodec   string  `json:"acodec"`
	Height   int     `json:"height"`
	TBR      float64 `json:"tbr"`
	ABR      float64 `json:"abr"`
	Protocol string  `json:"protocol"`
}

func (f Format) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != CodecNone
}

func (f Format) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != CodecNone
}

// Info is the result of probing a single URL.
type Info struct {
	ID      string
	Title   string
	Formats []Format
}
