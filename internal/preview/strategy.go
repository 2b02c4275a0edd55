package preview

// Strategy is how a category is presented.
type Strategy uint8

const (
	strategyUnset Strategy = iota
	InlineFrame
	ImageWithFallback
	NativeVideo
	NativeAudio
	TextExcerpt
	IconCard
	DownloadPrompt
)

var strategyNames = map[Strategy]string{
	InlineFrame:       "inline-frame",
	ImageWithFallback: "image",
	NativeVideo:       "video",
	NativeAudio:       "audio",
	TextExcerpt:       "text-excerpt",
	IconCard:          "icon-card",
	DownloadPrompt:    "download",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return "unset"
}

// strategies assigns exactly one strategy to each category. Its length is
// numCategories, so an entry for a category that does not exist will not
// compile, and a missing entry is caught by TestStrategyTableIsExhaustive.
var strategies = [numCategories]Strategy{
	PDF:          InlineFrame,
	Image:        ImageWithFallback,
	Video:        NativeVideo,
	Audio:        NativeAudio,
	Text:         TextExcerpt,
	Document:     IconCard,
	Presentation: IconCard,
	Spreadsheet:  IconCard,
	Unknown:      DownloadPrompt,
}

// StrategyFor returns the rendering strategy for c. Values outside the
// defined set get the download prompt.
func StrategyFor(c Category) Strategy {
	if !c.Valid() {
		return DownloadPrompt
	}
	return strategies[c]
}

// needsProbe reports whether the strategy loads the remote file directly
// and therefore can fail to render.
func (s Strategy) needsProbe() bool {
	switch s {
	case InlineFrame, ImageWithFallback, NativeVideo, NativeAudio:
		return true
	}
	return false
}
