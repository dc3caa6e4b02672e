// package formatter renders sync statuses and library contents for the CLI
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"musebox/internal/models"
)

// Palette is a simple stylesheet built with named [lipgloss.Style] fields.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	dim   lipgloss.Style
}

// NewPalette builds a Palette from foreground color values.
func NewPalette(t, s, e, w, d string) *Palette {
	return &Palette{
		title: newBold(t),
		ok:    newBold(s),
		err:   newBold(e),
		warn:  newStyle(w),
		dim:   newStyle(d).Italic(true),
	}
}

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

func newStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func newBold(fg string) lipgloss.Style {
	return newStyle(fg).Bold(true)
}

// Status renders a provider status as a one-line colored summary.
func Status(providerID string, status models.Status) string {
	prefix := styles.title.Render(providerID)

	switch s := status.(type) {
	case models.NotStarted:
		return fmt.Sprintf("%s %s", prefix, styles.dim.Render("not started"))
	case models.Syncing:
		return fmt.Sprintf("%s %s", prefix, styles.warn.Render("syncing..."))
	case models.Synced:
		summary := fmt.Sprintf("synced %d tracks", s.SyncedTracks)
		if s.TracksWithError > 0 {
			summary += fmt.Sprintf(" (%d failed)", s.TracksWithError)
		}
		return fmt.Sprintf("%s %s %s", prefix, styles.ok.Render(summary),
			styles.dim.Render(s.LastSyncedAt.Format(time.RFC3339)))
	case models.SyncSkipped:
		return fmt.Sprintf("%s %s %s", prefix, styles.warn.Render("skipped, recently synced"),
			styles.dim.Render(s.LastSyncedAt.Format(time.RFC3339)))
	case models.Errored:
		return fmt.Sprintf("%s %s", prefix, styles.err.Render(fmt.Sprintf("error: %v", s.Err)))
	case models.Stopped:
		return fmt.Sprintf("%s %s", prefix, styles.dim.Render("stopped"))
	default:
		return fmt.Sprintf("%s %s", prefix, styles.dim.Render(string(status.Kind())))
	}
}

// FoldersToText renders provider folders as an id/name listing.
func FoldersToText(folders []models.Folder) []byte {
	var buf bytes.Buffer
	for _, folder := range folders {
		buf.WriteString(fmt.Sprintf("%s  %s\n", styles.dim.Render(folder.ID), folder.Name))
	}
	return buf.Bytes()
}

// AlbumsToText renders albums with their track lists as plain text.
func AlbumsToText(albums []models.Album) []byte {
	var buf bytes.Buffer

	for _, album := range albums {
		buf.WriteString(fmt.Sprintf("Album: %s\n", album.Name))
		if album.ReleaseYear != nil {
			buf.WriteString(fmt.Sprintf("Year: %d\n", *album.ReleaseYear))
		}
		if len(album.Genres) > 0 {
			buf.WriteString("Genres:")
			for _, g := range album.Genres {
				buf.WriteString(" " + g)
			}
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("Tracks: %d\n", len(album.Tracks)))
		for _, track := range album.Tracks {
			buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", track.TrackNumber, track.Name, FormatDuration(track.DurationSeconds)))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// TracksToCSV converts tracks to CSV with columns: ID, Name, Track, Artist, Duration, Resource.
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Track", "Artist", "Duration", "Resource"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Name,
			strconv.Itoa(track.TrackNumber),
			track.MainArtistID,
			strconv.Itoa(track.DurationSeconds),
			track.Resource,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
