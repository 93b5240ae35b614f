package track

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PhilKu7/schweizmobil-downloader/internal/api"
)

// ErrNotFound is returned when no track in the account matches the
// requested name.
var ErrNotFound = errors.New("track not found")

// errInputClosed aborts a selection whose input ran out before a valid
// choice was made.
var errInputClosed = errors.New("selection input closed")

// DetailFetcher is the slice of the API client the disambiguator needs.
type DetailFetcher interface {
	TrackDetail(ctx context.Context, id int64) (api.TrackDetail, error)
}

// Candidate pairs a matching track with its detail record, or with the
// error that made the detail unavailable.
type Candidate struct {
	Summary api.TrackSummary
	Detail  api.TrackDetail
	Err     error
}

// Available reports whether the candidate's detail record was fetched.
func (c Candidate) Available() bool { return c.Err == nil }

// Match returns every track whose name equals name, case-sensitively,
// preserving list order.
func Match(list []api.TrackSummary, name string) []api.TrackSummary {
	var matches []api.TrackSummary
	for _, t := range list {
		if t.Name == name {
			matches = append(matches, t)
		}
	}
	return matches
}

// FetchDetails fetches the detail record for each match in order. A failed
// fetch marks that candidate unavailable and moves on; it never aborts the
// remaining candidates. progress, if non-nil, is called after each fetch.
func FetchDetails(ctx context.Context, fetcher DetailFetcher, matches []api.TrackSummary, progress func(done, total int)) []Candidate {
	candidates := make([]Candidate, len(matches))
	for i, m := range matches {
		detail, err := fetcher.TrackDetail(ctx, m.ID)
		candidates[i] = Candidate{Summary: m, Detail: detail, Err: err}
		if progress != nil {
			progress(i+1, len(matches))
		}
	}
	return candidates
}

// Selector runs the interactive choice among ambiguous candidates. In and
// Out are injected so tests can drive the prompt.
type Selector struct {
	In  io.Reader
	Out io.Writer
}

// Choose prints one line per candidate and prompts for a 1-based index
// until a valid, available candidate is selected. The chosen candidate's
// already-fetched detail is returned; nothing is re-fetched.
func (s Selector) Choose(candidates []Candidate) (api.TrackDetail, error) {
	for i, c := range candidates {
		fmt.Fprintln(s.Out, describe(i, c))
	}

	scanner := bufio.NewScanner(s.In)
	for {
		fmt.Fprintf(s.Out, "Select a track (1-%d): ", len(candidates))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return api.TrackDetail{}, err
			}
			return api.TrackDetail{}, errInputClosed
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintln(s.Out, "Invalid input. Please enter a number.")
			continue
		}
		if choice < 1 || choice > len(candidates) {
			fmt.Fprintln(s.Out, "Invalid choice. Please try again.")
			continue
		}
		c := candidates[choice-1]
		if !c.Available() {
			fmt.Fprintln(s.Out, "Details for this track are unavailable. Please choose another.")
			continue
		}
		return c.Detail, nil
	}
}

func describe(idx int, c Candidate) string {
	if !c.Available() {
		return fmt.Sprintf("%d: (details unavailable) | ID=%d", idx+1, c.Summary.ID)
	}
	props := c.Detail.Properties
	filterName := props.FilterName
	if filterName == "" {
		filterName = "N/A"
	}
	return fmt.Sprintf("%d: %s | ID=%d | Created: %s | Modified: %s",
		idx+1, filterName, c.Summary.ID, formatTimestamp(props.CreatedAt), formatTimestamp(props.ModifiedAt))
}

// formatTimestamp renders an ISO-8601 timestamp as dd.mm.yyyy hh:mm,
// falling back to the raw string when it does not parse.
func formatTimestamp(raw string) string {
	if raw == "" {
		return "unknown"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("02.01.2006 15:04")
		}
	}
	return raw
}
