// Package keys derives object-store keys for uploaded videos and their transcription results.
//
// The upload key and the result key share a base name; that shared base name is the only
// correlation between an uploaded video and the transcript the pipeline writes for it.
package keys

import (
	"path"
	"strings"
)

// ResultExtension is the extension of transcription result objects.
const ResultExtension = ".json"

// Layout holds the configured key prefixes.
type Layout struct {
	MeetingVideosPrefix        string
	TranscriptionResultsPrefix string
}

// UploadKey returns the key a video named fileName is written to.
func (l Layout) UploadKey(fileName string) string {
	return l.MeetingVideosPrefix + fileName
}

// ResultKey returns the key the transcription result for fileName is expected at.
func (l Layout) ResultKey(fileName string) string {
	return l.TranscriptionResultsPrefix + StripExtension(fileName) + ResultExtension
}

// StripExtension removes the last extension from name. Names without a dot are returned unchanged.
func StripExtension(name string) string {
	if i := strings.LastIndex(name, "."); i != -1 {
		return name[:i]
	}
	return name
}

// BaseName returns the last path element of an object key.
func BaseName(key string) string {
	return path.Base(key)
}
