package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PhilKu7/schweizmobil-downloader/internal/api"
	"github.com/PhilKu7/schweizmobil-downloader/internal/geo"
	"github.com/PhilKu7/schweizmobil-downloader/internal/gpx"
	"github.com/PhilKu7/schweizmobil-downloader/internal/profile"
	"github.com/PhilKu7/schweizmobil-downloader/internal/track"
)

// Client is the slice of the API client the exporter needs.
type Client interface {
	ListTracks(ctx context.Context) ([]api.TrackSummary, error)
	TrackDetail(ctx context.Context, id int64) (api.TrackDetail, error)
}

// Exporter runs the track-selection and GPX-export pipeline for one track.
type Exporter struct {
	Client Client

	// Out receives user-facing messages; In drives the disambiguation
	// prompt. Progress, if set, is called per candidate detail fetch.
	Out      io.Writer
	In       io.Reader
	Progress func(done, total int)

	// OutputDir is where <track name>.gpx is created. Empty means the
	// working directory.
	OutputDir string
}

// Run exports the named track and returns the path of the written file.
// Any error other than a per-candidate detail failure aborts before the
// output file is created.
func (e *Exporter) Run(ctx context.Context, name string) (string, error) {
	tracks, err := e.Client.ListTracks(ctx)
	if err != nil {
		return "", err
	}

	detail, err := e.selectTrack(ctx, tracks, name)
	if err != nil {
		return "", err
	}

	points, err := profile.Parse(detail.Properties.Profile)
	if err != nil {
		return "", fmt.Errorf("track %q: %w", name, err)
	}
	viaPoints, err := profile.ParseViaPoints(detail.Properties.ViaPoints)
	if err != nil {
		return "", fmt.Errorf("track %q via points: %w", name, err)
	}

	// A track name must not escape the output directory.
	fileName := strings.ReplaceAll(name, "/", "_")
	if sep := string(filepath.Separator); sep != "/" {
		fileName = strings.ReplaceAll(fileName, sep, "_")
	}
	path := filepath.Join(e.OutputDir, fileName+".gpx")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := gpx.Write(f, name, points, viaPoints, gpx.TransformFunc(geo.LV03ToWGS84)); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// selectTrack walks the match states: not found, unique, ambiguous.
func (e *Exporter) selectTrack(ctx context.Context, tracks []api.TrackSummary, name string) (api.TrackDetail, error) {
	matches := track.Match(tracks, name)

	switch len(matches) {
	case 0:
		fmt.Fprintf(e.Out, "\nTrack %q not found in your schweizmobil.ch account.\n", name)
		fmt.Fprintln(e.Out, "Available tracks:")
		for _, t := range tracks {
			fmt.Fprintf(e.Out, "- %s (ID: %d)\n", t.Name, t.ID)
		}
		return api.TrackDetail{}, fmt.Errorf("%w: %q", track.ErrNotFound, name)
	case 1:
		return e.Client.TrackDetail(ctx, matches[0].ID)
	default:
		fmt.Fprintf(e.Out, "\nMultiple tracks found with the name %q:\n", name)
		candidates := track.FetchDetails(ctx, e.Client, matches, e.Progress)
		sel := track.Selector{In: e.In, Out: e.Out}
		return sel.Choose(candidates)
	}
}
