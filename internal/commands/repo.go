package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/cleared-dev/farmledger/internal/config"
	"github.com/cleared-dev/farmledger/internal/importer"
	"github.com/cleared-dev/farmledger/internal/pipeline"
	"github.com/cleared-dev/farmledger/internal/runlog"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
)

// repo is a loaded ledger repo.
type repo struct {
	root string
	cfg  *config.Config
}

func openRepo(dir string) (*repo, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.LoadRepo(root)
	if err != nil {
		return nil, err
	}
	return &repo{root: root, cfg: cfg}, nil
}

func (r *repo) inputDir() string  { return filepath.Join(r.root, r.cfg.Input.Dir) }
func (r *repo) outputDir() string { return filepath.Join(r.root, r.cfg.Output.Dir) }

func (r *repo) runner(logOut io.Writer) (*pipeline.Runner, error) {
	eps, err := r.cfg.Epsilon()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(pipeline.WithLogger(r.logger(logOut)), pipeline.WithEpsilon(eps)), nil
}

func (r *repo) logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: r.cfg.LogLevel()}))
}

// process reads every account sheet and runs the pipeline through stop,
// printing one line per stage to out. It returns the last progress report.
// Every stage is recorded in the run log.
func (r *repo) process(out io.Writer, stop pipeline.Step) (pipeline.Progress, error) {
	raw, err := importer.DefaultRegistry().ReadAll(r.inputDir(), r.cfg.Input.Formats)
	if err != nil {
		return pipeline.Progress{}, err
	}
	if len(raw) == 0 {
		return pipeline.Progress{}, fmt.Errorf("no account sheets found in %s", r.inputDir())
	}

	runner, err := r.runner(os.Stderr)
	if err != nil {
		return pipeline.Progress{}, err
	}

	var last pipeline.Progress
	var entries []runlog.Entry
	var runErr error
	for p, err := range runner.Steps(pipeline.State{Raw: raw}, pipeline.StepSettings) {
		last = p
		entries = append(entries, runlog.FromProgress(time.Now().UTC(), p))
		printProgress(out, p, err)
		if err != nil {
			runErr = fmt.Errorf("%s failed with %d errors", p.Step, len(p.Errors))
			break
		}
		if p.Step == stop {
			break
		}
	}

	if err := runlog.Append(r.root, entries); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write run log: %v\n", err)
	}
	return last, runErr
}

func printProgress(out io.Writer, p pipeline.Progress, err error) {
	switch {
	case err != nil:
		failColor.Fprintf(out, "FAIL %s\n", p.Step)
		for _, msg := range p.Errors {
			fmt.Fprintf(out, "  %s\n", msg)
		}
	case p.Done:
		if p.State.Final != nil {
			okColor.Fprintf(out, "done %d accounts, %d tax lines, %d mkt lines\n",
				len(p.State.Final.Originals), len(p.State.Final.Tax.Lines), len(p.State.Final.Mkt.Lines))
		}
	case len(p.Errors) > 0:
		warnColor.Fprintf(out, "ok   %s (%d errors)\n", p.Step, len(p.Errors))
		for _, msg := range p.Errors {
			fmt.Fprintf(out, "  %s\n", msg)
		}
	default:
		okColor.Fprintf(out, "ok   %s\n", p.Step)
	}
}
