package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ProviderInfo identifies a connected provider.
type ProviderInfo struct {
	ID   string // Stable provider identity, single-flight key
	Name string // Human-readable provider name for display and logs
}

// Auth carries the provider credentials for one sync session.
//
// Token expiry is prechecked by the coordinator; refreshing is the
// responsibility of the authentication layer, not this engine.
type Auth struct {
	Token oauth2.Token
}

// Valid reports whether the access token has not expired at the given instant.
func (a Auth) Valid(now time.Time) bool {
	return a.Token.Expiry.After(now)
}

// StartArgs is the configuration for one sync session.
//
// Implementations are [FileStartArgs] and [APIStartArgs]. The interface is
// sealed so the coordinator can dispatch exhaustively on the variant.
type StartArgs interface {
	Provider() ProviderInfo
	LastSyncedAt() *time.Time
	isStartArgs()
}

// FileStartArgs configures a sync for a provider exposing a file tree.
type FileStartArgs struct {
	Info       ProviderInfo
	Auth       Auth
	RootFolder Folder
	LastSynced *time.Time
}

func (a FileStartArgs) Provider() ProviderInfo   { return a.Info }
func (a FileStartArgs) LastSyncedAt() *time.Time { return a.LastSynced }
func (FileStartArgs) isStartArgs()               {}

// APIStartArgs configures a sync for a provider exposing a library API.
type APIStartArgs struct {
	Info       ProviderInfo
	Auth       Auth
	LastSynced *time.Time
}

func (a APIStartArgs) Provider() ProviderInfo   { return a.Info }
func (a APIStartArgs) LastSyncedAt() *time.Time { return a.LastSynced }
func (APIStartArgs) isStartArgs()               {}

// AuthOf returns the Auth of either [StartArgs] variant.
func AuthOf(args StartArgs) Auth {
	switch v := args.(type) {
	case FileStartArgs:
		return v.Auth
	case APIStartArgs:
		return v.Auth
	default:
		panic(fmt.Sprintf("unknown StartArgs variant %T", args))
	}
}

// Folder is a folder node in a file-based provider's tree.
type Folder struct {
	ID   string
	Name string
}

// File is a file node in a file-based provider's tree.
type File struct {
	ID          string
	Name        string
	Size        int64
	MimeType    string // Optional; empty when the provider does not report one
	DownloadURL string
}

// TrackMetadata is the raw record extracted from an audio byte sample.
//
// Every field is optional; the normalizer supplies defaults for gaps.
type TrackMetadata struct {
	Title           string
	Artists         []string
	Album           string
	Genres          []string
	TrackNumber     int // 0 when absent
	DiscNumber      int
	Year            int
	EmbeddedCover   string // Data URL or provider URL; empty when absent
	DurationSeconds int
}

// Artist is a persisted, deduplicated artist record.
type Artist struct {
	ID    string
	Name  string
	Image *string
}

// Album is a persisted album record owning its ordered track list.
//
// Tracks are embedded on the album and also flattened into the tracks
// table by the persistence layer; both views are kept in sync by the
// pipelines, not by the storage layer.
type Album struct {
	ID            string
	Name          string
	ArtistID      string
	EmbeddedCover *string
	ReleaseYear   *int
	ProviderID    string
	Genres        []string
	Tracks        []Track
}

// HasTrack reports whether an equal (name, track number) pair already exists.
func (a *Album) HasTrack(name string, number int) bool {
	for _, t := range a.Tracks {
		if t.Name == name && t.TrackNumber == number {
			return true
		}
	}
	return false
}

// AddTrack appends the track unless a (name, track number) duplicate exists,
// then restores track-number ordering.
func (a *Album) AddTrack(t Track) {
	if a.HasTrack(t.Name, t.TrackNumber) {
		return
	}
	a.Tracks = append(a.Tracks, t)
	sort.SliceStable(a.Tracks, func(i, j int) bool {
		return a.Tracks[i].TrackNumber < a.Tracks[j].TrackNumber
	})
}

// MergeGenres unions raw genre strings into the album's genre list.
//
// Each raw entry may be comma-separated ("Rock, Pop"); entries are split,
// trimmed, and appended in first-appearance order after the existing list.
func (a *Album) MergeGenres(raw []string) {
	seen := make(map[string]struct{}, len(a.Genres))
	for _, g := range a.Genres {
		seen[g] = struct{}{}
	}
	for _, entry := range raw {
		for _, g := range splitGenres(entry) {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			a.Genres = append(a.Genres, g)
		}
	}
}

// splitGenres splits a raw genre string on commas and trims each part.
func splitGenres(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if g := strings.TrimSpace(part); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// Track is a persisted, flattened track record.
type Track struct {
	ID                 string
	MainArtistID       string
	SecondaryArtistIDs []string
	Name               string
	TrackNumber        int
	Resource           string // Playable resource descriptor (download URL or provider URI)
	DurationSeconds    int
}

// Validate checks the track's referential fields before persistence.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("track name is required")
	}
	if t.MainArtistID == "" {
		return fmt.Errorf("track %s: main artist id is required", t.ID)
	}
	return nil
}
