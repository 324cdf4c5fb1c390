// Package transcript parses transcription results and stages them as local text artifacts.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
)

// ErrMalformed is returned when a result object exists but is not a transcription document.
var ErrMalformed = errors.New("malformed transcript document")

// Document is the result object written by the transcription service.
type Document struct {
	JobName string  `json:"jobName,omitempty"`
	Status  string  `json:"status,omitempty"`
	Results Results `json:"results"`
}

// Results holds the ordered transcript segments.
type Results struct {
	Transcripts []Segment `json:"transcripts"`
	Items       []Item    `json:"items,omitempty"`
}

// Segment is one transcript block.
type Segment struct {
	Transcript string `json:"transcript"`
}

// Item is an individual word or punctuation record.
type Item struct {
	StartTime    string        `json:"start_time,omitempty"`
	EndTime      string        `json:"end_time,omitempty"`
	Type         string        `json:"type"`
	Alternatives []Alternative `json:"alternatives"`
}

// Alternative is a candidate content for an item.
type Alternative struct {
	Confidence string `json:"confidence"`
	Content    string `json:"content"`
}

// Text joins the segments in order, one per line.
func (d *Document) Text() string {
	return strings.Join(lo.Map(d.Results.Transcripts, func(s Segment, _ int) string {
		return s.Transcript
	}), "\n")
}

// Decode reads a Document from r.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &doc, nil
}

// Parse decodes the document in r and returns its text.
func Parse(r io.Reader) (string, error) {
	doc, err := Decode(r)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}
