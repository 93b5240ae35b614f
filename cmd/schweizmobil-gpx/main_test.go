package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PhilKu7/schweizmobil-downloader/internal/api"
	"github.com/PhilKu7/schweizmobil-downloader/internal/config"
)

type fakeClient struct {
	loginUser string
	loginPass string
	loginErr  error
	tracks    []api.TrackSummary
	details   map[int64]api.TrackDetail
}

func (f *fakeClient) Login(_ context.Context, username, password string) error {
	f.loginUser, f.loginPass = username, password
	return f.loginErr
}

func (f *fakeClient) ListTracks(context.Context) ([]api.TrackSummary, error) {
	return f.tracks, nil
}

func (f *fakeClient) TrackDetail(_ context.Context, id int64) (api.TrackDetail, error) {
	return f.details[id], nil
}

func testDeps(client *fakeClient, args []string, input string, out *strings.Builder) mainDeps {
	return mainDeps{
		loadConfig: func() config.Config {
			return config.Config{BaseURL: "http://example.test", Timeout: time.Second}
		},
		args:         args,
		stdin:        strings.NewReader(input),
		stdout:       out,
		readPassword: func() (string, error) { return "prompted-pass", nil },
		newClient: func(string, time.Duration) apiClient {
			return client
		},
	}
}

func TestRunExportsTrack(t *testing.T) {
	client := &fakeClient{
		tracks: []api.TrackSummary{{ID: 1, Name: "Loop"}},
		details: map[int64]api.TrackDetail{
			1: {ID: 1, Properties: api.TrackProperties{
				Profile:   "[[600000,200000,400,0],[600100,200010,410,100]]",
				ViaPoints: "[[600000,200000],[600100,200010]]",
			}},
		},
	}
	dir := t.TempDir()
	var out strings.Builder
	deps := testDeps(client, []string{"-u", "alice", "-p", "secret", "-t", "Loop", "-o", dir}, "", &out)

	if err := run(context.Background(), deps); err != nil {
		t.Fatalf("run: %v", err)
	}
	if client.loginUser != "alice" || client.loginPass != "secret" {
		t.Fatalf("login credentials = %q/%q", client.loginUser, client.loginPass)
	}
	if !strings.Contains(out.String(), "GPX written: "+filepath.Join(dir, "Loop.gpx")) {
		t.Fatalf("missing success message:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "Loop.gpx")); err != nil {
		t.Fatalf("output file: %v", err)
	}
}

func TestRunPromptsForMissingInputs(t *testing.T) {
	client := &fakeClient{
		tracks: []api.TrackSummary{{ID: 1, Name: "Loop"}},
		details: map[int64]api.TrackDetail{
			1: {ID: 1, Properties: api.TrackProperties{Profile: "[]", ViaPoints: "[]"}},
		},
	}
	var out strings.Builder
	deps := testDeps(client, []string{"-o", t.TempDir()}, "alice\nLoop\n", &out)

	if err := run(context.Background(), deps); err != nil {
		t.Fatalf("run: %v", err)
	}
	if client.loginUser != "alice" || client.loginPass != "prompted-pass" {
		t.Fatalf("login credentials = %q/%q", client.loginUser, client.loginPass)
	}
	for _, prompt := range []string{"Schweizmobil.ch username: ", "Schweizmobil.ch password: ", "Track name (case-sensitive): "} {
		if !strings.Contains(out.String(), prompt) {
			t.Fatalf("missing prompt %q:\n%s", prompt, out.String())
		}
	}
}

func TestRunLoginFailure(t *testing.T) {
	client := &fakeClient{loginErr: errors.New("status 403")}
	var out strings.Builder
	deps := testDeps(client, []string{"-u", "alice", "-p", "bad", "-t", "Loop"}, "", &out)

	err := run(context.Background(), deps)
	if err == nil || !strings.Contains(err.Error(), "login failed") {
		t.Fatalf("expected login failure, got %v", err)
	}
}

func TestResolveCredentialsPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.txt")
	if err := os.WriteFile(path, []byte("username=filed\npassword=filepass\n"), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	cfg := config.Config{Username: "envuser", Password: "envpass"}
	in := bufio.NewReader(strings.NewReader(""))
	noPrompt := func() (string, error) { return "", errors.New("should not prompt") }

	// File beats environment.
	creds, err := resolveCredentials(cfg, options{credentialsFile: path}, in, &strings.Builder{}, noPrompt)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if creds.Username != "filed" || creds.Password != "filepass" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	// Flags beat the file.
	creds, err = resolveCredentials(cfg, options{credentialsFile: path, username: "flagged"}, in, &strings.Builder{}, noPrompt)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if creds.Username != "flagged" || creds.Password != "filepass" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	// Environment alone suffices.
	creds, err = resolveCredentials(cfg, options{}, in, &strings.Builder{}, noPrompt)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if creds.Username != "envuser" || creds.Password != "envpass" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestResolveCredentialsRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.txt")
	if err := os.WriteFile(path, []byte("username=alice\n"), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	in := bufio.NewReader(strings.NewReader(""))
	_, err := resolveCredentials(config.Config{}, options{credentialsFile: path}, in, &strings.Builder{}, nil)
	if err == nil {
		t.Fatalf("expected error for malformed credentials file")
	}
}

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-username", "alice", "-t", "Loop", "-c", "creds.txt"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.username != "alice" || opts.track != "Loop" || opts.credentialsFile != "creds.txt" {
		t.Fatalf("unexpected options: %+v", opts)
	}

	if _, err := parseArgs([]string{"-bogus"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestPromptLineEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	if _, err := promptLine(in, &strings.Builder{}, "? "); err == nil {
		t.Fatalf("expected error on exhausted input")
	}
}
