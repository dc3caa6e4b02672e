package models

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestAuth_Valid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"future expiry", now.Add(time.Hour), true},
		{"past expiry", now.Add(-time.Minute), false},
		{"exact instant", now, false},
		{"zero expiry", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := Auth{Token: oauth2.Token{Expiry: tt.expiry}}
			if got := auth.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthOf(t *testing.T) {
	auth := Auth{Token: oauth2.Token{AccessToken: "abc"}}

	fileAuth := AuthOf(FileStartArgs{Auth: auth})
	if fileAuth.Token.AccessToken != "abc" {
		t.Errorf("AuthOf(FileStartArgs) = %+v", fileAuth)
	}

	apiAuth := AuthOf(APIStartArgs{Auth: auth})
	if apiAuth.Token.AccessToken != "abc" {
		t.Errorf("AuthOf(APIStartArgs) = %+v", apiAuth)
	}
}

func TestAlbum_AddTrack(t *testing.T) {
	album := &Album{ID: "al1", Name: "OK Computer"}

	album.AddTrack(Track{ID: "t3", Name: "Exit Music", TrackNumber: 4})
	album.AddTrack(Track{ID: "t1", Name: "Airbag", TrackNumber: 1})
	album.AddTrack(Track{ID: "t2", Name: "Paranoid Android", TrackNumber: 2})

	if len(album.Tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(album.Tracks))
	}
	want := []int{1, 2, 4}
	for i, n := range want {
		if album.Tracks[i].TrackNumber != n {
			t.Errorf("Tracks[%d].TrackNumber = %d, want %d", i, album.Tracks[i].TrackNumber, n)
		}
	}

	// Same name and number is a duplicate regardless of id.
	album.AddTrack(Track{ID: "t4", Name: "Airbag", TrackNumber: 1})
	if len(album.Tracks) != 3 {
		t.Errorf("duplicate track was added, got %d tracks", len(album.Tracks))
	}

	// Same name at a different number is a distinct track.
	album.AddTrack(Track{ID: "t5", Name: "Airbag", TrackNumber: 9})
	if len(album.Tracks) != 4 {
		t.Errorf("distinct track rejected, got %d tracks", len(album.Tracks))
	}
}

func TestAlbum_MergeGenres(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		raw      []string
		want     []string
	}{
		{
			name: "comma-separated entry splits",
			raw:  []string{"Rock, Pop"},
			want: []string{"Rock", "Pop"},
		},
		{
			name:     "duplicates dropped",
			existing: []string{"Rock"},
			raw:      []string{"Rock", "Jazz"},
			want:     []string{"Rock", "Jazz"},
		},
		{
			name:     "first-appearance order kept",
			existing: []string{"Ambient"},
			raw:      []string{"Jazz, Ambient", "Electronic"},
			want:     []string{"Ambient", "Jazz", "Electronic"},
		},
		{
			name: "blank parts skipped",
			raw:  []string{" , Rock,, "},
			want: []string{"Rock"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			album := &Album{Genres: tt.existing}
			album.MergeGenres(tt.raw)
			if len(album.Genres) != len(tt.want) {
				t.Fatalf("Genres = %v, want %v", album.Genres, tt.want)
			}
			for i := range tt.want {
				if album.Genres[i] != tt.want[i] {
					t.Errorf("Genres[%d] = %q, want %q", i, album.Genres[i], tt.want[i])
				}
			}
		})
	}
}

func TestTrack_Validate(t *testing.T) {
	tests := []struct {
		name    string
		track   Track
		wantErr bool
	}{
		{"valid", Track{ID: "t1", Name: "Song", MainArtistID: "ar1"}, false},
		{"missing id", Track{Name: "Song", MainArtistID: "ar1"}, true},
		{"missing name", Track{ID: "t1", MainArtistID: "ar1"}, true},
		{"missing artist", Track{ID: "t1", Name: "Song"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.track.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusKinds(t *testing.T) {
	tests := []struct {
		status Status
		want   StatusKind
	}{
		{NotStarted{}, KindNotStarted},
		{Syncing{}, KindSyncing},
		{Synced{}, KindSynced},
		{SyncSkipped{}, KindSyncSkipped},
		{Errored{}, KindErrored},
		{Stopped{}, KindStopped},
	}

	for _, tt := range tests {
		if got := tt.status.Kind(); got != tt.want {
			t.Errorf("%T.Kind() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
