package view

import (
	"strings"

	"github.com/ripplechat/ripple/internal/types"
)

// PreviewKind is the coarse category shown in the chat list.
type PreviewKind string

const (
	PreviewText      PreviewKind = "text"
	PreviewPhoto     PreviewKind = "photo"
	PreviewVideo     PreviewKind = "video"
	PreviewAudio     PreviewKind = "audio"
	PreviewFile      PreviewKind = "file"
	PreviewLink      PreviewKind = "link"
	PreviewLocation  PreviewKind = "location"
	PreviewSticker   PreviewKind = "sticker"
	PreviewGif       PreviewKind = "gif"
	PreviewVoiceNote PreviewKind = "voice"
	PreviewSystem    PreviewKind = "system"
)

// ClassifyMessage derives the preview kind from the authoritative type enum
// and structured metadata. This is the primary classification path; the text
// heuristic below exists only for bare denormalized summary text.
func ClassifyMessage(message types.Message) PreviewKind {
	switch message.Type {
	case types.MessageTypeImage:
		return PreviewPhoto
	case types.MessageTypeVideo:
		return PreviewVideo
	case types.MessageTypeAudio:
		return PreviewAudio
	case types.MessageTypeFile:
		return PreviewFile
	case types.MessageTypeLink:
		return PreviewLink
	case types.MessageTypeLocation:
		return PreviewLocation
	case types.MessageTypeSticker:
		return PreviewSticker
	case types.MessageTypeGif:
		return PreviewGif
	case types.MessageTypeVoiceNote:
		return PreviewVoiceNote
	case types.MessageTypeSystem:
		return PreviewSystem
	}
	// Untyped rows still carry classifiable metadata sometimes.
	switch {
	case message.MediaURL != nil && *message.MediaURL != "":
		return PreviewPhoto
	case message.FileName != nil && *message.FileName != "":
		return PreviewFile
	case message.LinkURL != nil && *message.LinkURL != "":
		return PreviewLink
	}
	return PreviewText
}

// previewMarkers maps known emoji/keyword prefixes to preview kinds. Order
// matters: the first matching marker wins.
var previewMarkers = []struct {
	marker string
	kind   PreviewKind
}{
	{"📷", PreviewPhoto},
	{"🎥", PreviewVideo},
	{"🎵", PreviewAudio},
	{"🎤", PreviewVoiceNote},
	{"📎", PreviewFile},
	{"📄", PreviewFile},
	{"📍", PreviewLocation},
	{"🔗", PreviewLink},
	{"GIF", PreviewGif},
	{"Sticker", PreviewSticker},
}

// ClassifyText classifies bare summary text by marker prefix. No marker
// means plain text.
func ClassifyText(text string) PreviewKind {
	for _, entry := range previewMarkers {
		if strings.HasPrefix(text, entry.marker) {
			return entry.kind
		}
	}
	return PreviewText
}

// PreviewLabel is the human-readable list label for non-text previews.
func PreviewLabel(kind PreviewKind) string {
	switch kind {
	case PreviewPhoto:
		return "Photo"
	case PreviewVideo:
		return "Video"
	case PreviewAudio:
		return "Audio"
	case PreviewFile:
		return "File"
	case PreviewLink:
		return "Link"
	case PreviewLocation:
		return "Location"
	case PreviewSticker:
		return "Sticker"
	case PreviewGif:
		return "GIF"
	case PreviewVoiceNote:
		return "Voice note"
	case PreviewSystem:
		return ""
	default:
		return ""
	}
}
