package common

import (
	"context"
	"io"
)

// Limits of the message processing pipeline
const (
	MaxURLMatches      = 10
	MaxMentionMatches  = 10
	ShortPreviewLength = 100
	LongPreviewLength  = 500
	MaxLenBody         = 50000

	// Maximum dimension of stored favicons
	FaviconSize = 16
)

// Container names of the image store
const (
	FaviconContainer = "favicons"
)

// IsTest is set, when running tests
var IsTest bool

// Smiley is an image substituted for a textual code in message bodies
type Smiley struct {
	ID      uint64 `json:"id"`
	Code    string `json:"code"`
	Path    string `json:"path"`
	Thought string `json:"thought"`
}

// Smileys is an ordered, immutable snapshot of the smiley registry
type Smileys []Smiley

// Len returns the number of smileys in the snapshot
func (s Smileys) Len() int {
	return len(s)
}

// At returns the smiley at index i
func (s Smileys) At(i int) Smiley {
	return s[i]
}

// RemotePageDetails is readable metadata of a remote page
type RemotePageDetails struct {
	Title   string `json:"title"`
	Favicon string `json:"favicon"`
	Card    string `json:"card"`
}

// RemoteURLReplacement is the rewrite of a single URL found in a message body
type RemoteURLReplacement struct {
	Match       string
	Replacement string
	Card        string
}

// ImageStore persists images under a container and name and returns their
// public path
type ImageStore interface {
	Store(ctx context.Context, container, name string, r io.Reader,
		maxDimension int, overwrite bool) (string, error)
}
