package models

import "strings"

// InputFormat describes how a document body was produced.
type InputFormat int

const (
	// FormatStorage is wiki storage markup (XHTML plus ac:/ri: tags).
	FormatStorage  InputFormat = iota
	FormatRendered             // Exported or rendered HTML page, distilled before conversion
)

func (f InputFormat) String() string {
	if f == FormatRendered {
		return "rendered"
	}
	return "storage"
}

// ResolveInputFormat determines the format of a request.
// Explicit formats win; otherwise a body that looks like a full HTML page is treated as rendered.
func ResolveInputFormat(req ParseRequest) InputFormat {
	if req.Format != FormatStorage {
		return req.Format
	}

	head := strings.ToLower(strings.TrimSpace(req.Body))
	if len(head) > 512 {
		head = head[:512]
	}
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") {
		return FormatRendered
	}
	return FormatStorage
}
