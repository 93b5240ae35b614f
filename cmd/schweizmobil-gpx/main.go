package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PhilKu7/schweizmobil-downloader/internal/api"
	"github.com/PhilKu7/schweizmobil-downloader/internal/config"
	"github.com/PhilKu7/schweizmobil-downloader/internal/export"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const defaultCredentialsFile = "credentials.txt"

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type options struct {
	username        string
	password        string
	track           string
	credentialsFile string
	outputDir       string
}

type mainDeps struct {
	loadConfig   func() config.Config
	args         []string
	stdin        io.Reader
	stdout       io.Writer
	readPassword func() (string, error)
	newClient    func(base string, timeout time.Duration) apiClient
}

// apiClient is the full client surface the binary needs: session login plus
// the export pipeline's fetch operations.
type apiClient interface {
	Login(ctx context.Context, username, password string) error
	export.Client
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:   config.Load,
		args:         os.Args[1:],
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		readPassword: readPasswordTerminal,
		newClient: func(base string, timeout time.Duration) apiClient {
			return api.NewClient(base, timeout)
		},
	}
}

func realMain(deps mainDeps) {
	if err := run(context.Background(), deps); err != nil {
		log.Fatalf("export failed: %v", err)
	}
}

func run(ctx context.Context, deps mainDeps) error {
	opts, err := parseArgs(deps.args)
	if err != nil {
		return err
	}

	cfg := deps.loadConfig()
	in := bufio.NewReader(deps.stdin)

	creds, err := resolveCredentials(cfg, opts, in, deps.stdout, deps.readPassword)
	if err != nil {
		return err
	}

	trackName := opts.track
	if trackName == "" {
		trackName, err = promptLine(in, deps.stdout, "Track name (case-sensitive): ")
		if err != nil {
			return err
		}
	}
	if trackName == "" {
		return fmt.Errorf("track name missing")
	}

	client := deps.newClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Login(ctx, creds.Username, creds.Password); err != nil {
		return fmt.Errorf("login failed, check your username and password: %w", err)
	}

	exporter := &export.Exporter{
		Client:    client,
		Out:       deps.stdout,
		In:        in,
		Progress:  detailProgress(),
		OutputDir: opts.outputDir,
	}

	path, err := exporter.Run(ctx, trackName)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.stdout, "\nGPX written: %s\n", path)
	fmt.Fprintln(deps.stdout, "Done.")
	return nil
}

func parseArgs(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("schweizmobil-gpx", flag.ContinueOnError)
	fs.StringVar(&opts.username, "username", "", "schweizmobil.ch username")
	fs.StringVar(&opts.username, "u", "", "shorthand for -username")
	fs.StringVar(&opts.password, "password", "", "schweizmobil.ch password")
	fs.StringVar(&opts.password, "p", "", "shorthand for -password")
	fs.StringVar(&opts.track, "track", "", "name of the track to export (case-sensitive)")
	fs.StringVar(&opts.track, "t", "", "shorthand for -track")
	fs.StringVar(&opts.credentialsFile, "credentials-file", "", "path to a file with username=... and password=... lines")
	fs.StringVar(&opts.credentialsFile, "c", "", "shorthand for -credentials-file")
	fs.StringVar(&opts.outputDir, "output-dir", "", "directory for the exported GPX file")
	fs.StringVar(&opts.outputDir, "o", "", "shorthand for -output-dir")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// resolveCredentials builds the login credentials from, in rising
// precedence: environment config, a credentials file (the -c flag or a
// credentials.txt in the working directory), explicit flags, and finally an
// interactive prompt for whatever is still missing.
func resolveCredentials(cfg config.Config, opts options, in *bufio.Reader, out io.Writer, readPassword func() (string, error)) (config.Credentials, error) {
	creds := config.Credentials{Username: cfg.Username, Password: cfg.Password}

	switch {
	case opts.credentialsFile != "":
		fileCreds, err := config.ReadCredentialsFile(opts.credentialsFile)
		if err != nil {
			return config.Credentials{}, err
		}
		creds = fileCreds
	default:
		if _, err := os.Stat(defaultCredentialsFile); err == nil {
			if fileCreds, err := config.ReadCredentialsFile(defaultCredentialsFile); err == nil {
				creds = fileCreds
			} else {
				fmt.Fprintln(out, err)
			}
		}
	}

	if opts.username != "" {
		creds.Username = opts.username
	}
	if opts.password != "" {
		creds.Password = opts.password
	}

	if creds.Username == "" {
		username, err := promptLine(in, out, "Schweizmobil.ch username: ")
		if err != nil {
			return config.Credentials{}, err
		}
		creds.Username = username
	}
	if creds.Password == "" {
		fmt.Fprint(out, "Schweizmobil.ch password: ")
		password, err := readPassword()
		if err != nil {
			return config.Credentials{}, err
		}
		fmt.Fprintln(out)
		creds.Password = password
	}

	if creds.Username == "" || creds.Password == "" {
		return config.Credentials{}, fmt.Errorf("username or password missing")
	}
	return creds, nil
}

func promptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPasswordTerminal reads a password without echo when stdin is a
// terminal, and falls back to a plain line read otherwise (pipes, tests).
func readPasswordTerminal() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// detailProgress renders a bar while per-candidate details are fetched
// during disambiguation. The bar is created lazily so a unique match never
// shows one.
func detailProgress() func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Fetching track details"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
}
