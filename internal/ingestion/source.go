package ingestion

import "strings"

// SourceKind names where advert text came from
type SourceKind string

const (
	// SourceUpload is an uploaded document
	SourceUpload SourceKind = "upload"
	// SourcePaste is text pasted by the user
	SourcePaste SourceKind = "paste"
	// SourceURL is a fetched web page
	SourceURL SourceKind = "url"
)

// Source is a user-supplied advert source. Several may be filled in at once;
// an upload wins over pasted text, which wins over a URL.
type Source struct {
	Filename string
	Data     []byte
	Text     string
	URL      string
}

// Kind returns the source that will be used, false when none is usable
func (s Source) Kind() (SourceKind, bool) {
	switch {
	case s.Filename != "" || len(s.Data) > 0:
		return SourceUpload, true
	case strings.TrimSpace(s.Text) != "":
		return SourcePaste, true
	case strings.TrimSpace(s.URL) != "":
		return SourceURL, true
	default:
		return "", false
	}
}
