// Package extract adapts the tag parsing library into the engine's
// metadata-extraction contract.
//
// The engine treats extraction as a black box: a byte stream plus size/type
// hints go in, a [models.TrackMetadata] or a malformed-file error comes out.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"

	"musebox/internal/models"
	"musebox/internal/shared"
)

// Hints carries what the provider already knows about the file.
type Hints struct {
	MimeType string // Optional
	Size     int64  // Total file size in bytes, not the sample size
}

// Extractor parses an audio byte sample into raw track metadata.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader, hints Hints) (models.TrackMetadata, error)
}

// TagExtractor implements [Extractor] on top of dhowden/tag.
type TagExtractor struct {
	logger *log.Logger
}

// NewTagExtractor creates a TagExtractor.
func NewTagExtractor(logger *log.Logger) *TagExtractor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TagExtractor{logger: logger}
}

// Extract reads the sample into memory and parses its tags.
//
// Returns [shared.ErrMalformedFile] when the sample cannot be parsed as a
// tagged audio file. Missing individual fields are not errors; the zero
// values flow through and the normalizer applies defaults.
func (e *TagExtractor) Extract(ctx context.Context, r io.Reader, hints Hints) (models.TrackMetadata, error) {
	var meta models.TrackMetadata

	if err := ctx.Err(); err != nil {
		return meta, err
	}

	sample, err := io.ReadAll(r)
	if err != nil {
		return meta, fmt.Errorf("%w: reading sample: %v", shared.ErrMalformedFile, err)
	}

	m, err := tag.ReadFrom(bytes.NewReader(sample))
	if err != nil {
		e.logger.Debug("tag parse failed", "mime", hints.MimeType, "size", hints.Size, "error", err)
		return meta, fmt.Errorf("%w: %v", shared.ErrMalformedFile, err)
	}

	meta.Title = m.Title()
	meta.Album = m.Album()
	meta.Artists = artistList(m)
	meta.TrackNumber, _ = m.Track()
	meta.DiscNumber, _ = m.Disc()
	meta.Year = m.Year()

	if genre := m.Genre(); genre != "" {
		meta.Genres = []string{genre}
	}

	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		mime := pic.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		meta.EmbeddedCover = fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(pic.Data))
	}

	return meta, nil
}

// artistList builds the ordered artist list: track artist first, album
// artist second when it names someone else.
func artistList(m tag.Metadata) []string {
	var artists []string
	if a := strings.TrimSpace(m.Artist()); a != "" {
		artists = append(artists, a)
	}
	if aa := strings.TrimSpace(m.AlbumArtist()); aa != "" && !containsFold(artists, aa) {
		artists = append(artists, aa)
	}
	return artists
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
