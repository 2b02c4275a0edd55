package preview

// Category is the display category of a resource file.
//
// The set is closed: numCategories bounds every table indexed by Category,
// so adding a value without extending those tables fails to compile or
// fails the exhaustiveness tests.
type Category uint8

const (
	Unknown Category = iota
	PDF
	Image
	Video
	Audio
	Text
	Document
	Presentation
	Spreadsheet

	numCategories
)

var categoryNames = [numCategories]string{
	Unknown:      "unknown",
	PDF:          "pdf",
	Image:        "image",
	Video:        "video",
	Audio:        "audio",
	Text:         "text",
	Document:     "document",
	Presentation: "presentation",
	Spreadsheet:  "spreadsheet",
}

func (c Category) String() string {
	if !c.Valid() {
		return categoryNames[Unknown]
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	return c < numCategories
}

// Categories returns every defined category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}
