package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/handiism/vinyl-vault/internal/app"
	"github.com/handiism/vinyl-vault/internal/config"
	"github.com/handiism/vinyl-vault/internal/route"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

// errUsage marks errors caused by bad invocation.
var errUsage = errors.New("usage")

// errNotSignedIn is returned by commands that need a session.
var errNotSignedIn = errors.New("not signed in, run `vinylvault-cli signin` first")

type command struct {
	summary string

	// guarded commands are only run with a session, like the /albums route.
	guarded bool

	// standalone commands run without building the app.
	standalone bool

	run func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"signin":    {summary: "Sign in and remember the session", run: runSignIn},
	"signup":    {summary: "Create an account and sign in", run: runSignUp},
	"signout":   {summary: "Forget the session", run: runSignOut},
	"whoami":    {summary: "Show the signed-in user", run: runWhoAmI},
	"albums":    {summary: "List your albums", guarded: true, run: runAlbums},
	"add":       {summary: "Add an album to your collection", guarded: true, run: runAdd},
	"edit":      {summary: "Edit one of your albums", guarded: true, run: runEdit},
	"delete":    {summary: "Delete one of your albums", guarded: true, run: runDelete},
	"community": {summary: "Browse everyone's albums", run: runCommunity},
	"reviews":   {summary: "Show the reviews of an album", run: runReviews},
	"review":    {summary: "Review an album", run: runReview},
	"unreview":  {summary: "Delete one of your reviews", run: runUnreview},
	"artwork":   {summary: "Search cover art for an album", run: runArtwork},
	"config":    {summary: "Manage the config file (config init)", standalone: true, run: runConfig},
}

// env is what every command runs against.
type env struct {
	app        *app.App
	configPath string
	in         *bufio.Reader
	out        io.Writer
	errOut     io.Writer
	verbose    bool
}

// Run executes the CLI with args (without the program name) and returns the
// process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vinylvault-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configFlag  = fs.String("config", "", "Path to config file")
		apiFlag     = fs.String("api", "", "API base URL (overrides config)")
		verboseFlag = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	if fs.NArg() == 0 {
		printUsage(stderr, fs)
		return ExitUsage
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q\n\n", name)
		printUsage(stderr, fs)
		return ExitUsage
	}

	e := &env{
		configPath: config.ResolvePath(*configFlag),
		in:         bufio.NewReader(stdin),
		out:        stdout,
		errOut:     stderr,
		verbose:    *verboseFlag,
	}

	if !cmd.standalone {
		closeApp, err := e.open(ctx, *apiFlag)
		if err != nil {
			fmt.Fprintf(stderr, "❌ %v\n", err)
			return ExitError
		}
		defer closeApp()

		if cmd.guarded {
			d := route.Resolve(route.PathAlbums, route.StateOf(e.app.Session.Snapshot()))
			if d.Redirect != "" {
				fmt.Fprintf(stderr, "❌ %v\n", errNotSignedIn)
				return ExitError
			}
		}
	}

	err := cmd.run(ctx, e, fs.Args()[1:])
	switch {
	case err == nil:
		return ExitOK
	case ctx.Err() != nil:
		fmt.Fprintln(stderr, "Cancelled.")
		return ExitCancelled
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return ExitUsage
	default:
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return ExitError
	}
}

// open builds and hydrates the app.
func (e *env) open(ctx context.Context, apiURL string) (func(), error) {
	settings, err := config.Load(e.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if apiURL != "" {
		settings.APIURL = apiURL
	}
	settings.LogLevel = "warn"
	if e.verbose {
		settings.LogLevel = "debug"
	}

	a, err := app.New(ctx, settings, app.Options{LogOutput: e.errOut})
	if err != nil {
		return nil, err
	}
	if err := a.Hydrate(ctx); err != nil {
		a.Close()
		return nil, err
	}
	e.app = a
	return func() { a.Close() }, nil
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

func (e *env) verbosef(format string, args ...any) {
	if e.verbose {
		fmt.Fprintf(e.errOut, format, args...)
	}
}

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func newFlagSet(e *env, name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	fs.Usage = func() {
		fmt.Fprintf(e.errOut, "Usage:\n  vinylvault-cli %s %s\n\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses flags and returns the positional arguments, accepting flags
// before or after them.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "VinylVault - your vinyl collection from the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  vinylvault-cli [options] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "For interactive mode, use: vinylvault")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
}

// confirm asks a yes/no question on stdin. Anything but y/yes is a no.
func (e *env) confirm(question string) bool {
	fmt.Fprintf(e.errOut, "%s [y/N] ", question)
	answer, _ := e.readLine()
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (e *env) readLine() (string, error) {
	line, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
