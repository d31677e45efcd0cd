package audio

import (
	"path/filepath"
	"strings"
)

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".flac": {},
	".ogg":  {},
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
}

// IsSupportedFormat reports whether the file extension belongs to a container
// the decoder accepts. Video containers are accepted; their audio track is
// extracted during decode.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := audioExtensions[ext]; ok {
		return true
	}
	_, ok := videoExtensions[ext]
	return ok
}
