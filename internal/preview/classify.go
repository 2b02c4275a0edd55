package preview

import "strings"

// extensions lists the recognized extensions per category. An extension
// must not appear under two categories.
var extensions = [numCategories][]string{
	PDF:          {"pdf"},
	Image:        {"jpg", "jpeg", "png", "gif", "webp", "svg"},
	Video:        {"mp4", "avi", "mov", "wmv", "webm", "mkv"},
	Audio:        {"mp3", "wav", "ogg", "aac", "m4a"},
	Document:     {"doc", "docx"},
	Text:         {"txt", "md", "rtf"},
	Presentation: {"ppt", "pptx"},
	Spreadsheet:  {"xls", "xlsx"},
}

var byExtension = buildExtensionIndex()

func buildExtensionIndex() map[string]Category {
	idx := make(map[string]Category)
	for c := Category(0); c < numCategories; c++ {
		for _, ext := range extensions[c] {
			if _, dup := idx[ext]; dup {
				continue
			}
			idx[ext] = c
		}
	}
	return idx
}

// Extension returns the lower-cased text after the last "." in fileName, or
// "" when there is no dot.
func Extension(fileName string) string {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(fileName[i+1:])
}

// Classify maps a file name to its Category. It never fails.
func Classify(fileName string) Category {
	if c, ok := byExtension[Extension(fileName)]; ok {
		return c
	}
	return Unknown
}
