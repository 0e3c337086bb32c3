package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/scrape"
)

// Decision is the outcome of one prompt.
type Decision int

const (
	Mark     Decision = iota // applied; mark and continue
	Continue                 // skip without marking
	Stop
)

// ParseDecision maps a console line to a decision: "exit" (any case) stops,
// "s" or "skip" continues, anything else, including an empty line, marks.
func ParseDecision(line string) Decision {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit":
		return Stop
	case "s", "skip":
		return Continue
	default:
		return Mark
	}
}

// Store is what the loop needs from the record store.
type Store interface {
	MarkApplied(ctx context.Context, id int64) (bool, error)
}

// Opener shows a job link, typically in the browser session.
type Opener interface {
	Navigate(ctx context.Context, url string) error
}

type Loop struct {
	Store   Store
	Opener  Opener // optional
	BaseURL string

	In  io.Reader
	Out io.Writer

	Styled bool
	Logger *slog.Logger
}

// NewLoop reads stdin and writes stdout, styling output when stdout is a
// terminal.
func NewLoop(s Store, opener Opener, baseURL string, log *slog.Logger) *Loop {
	return &Loop{
		Store:   s,
		Opener:  opener,
		BaseURL: baseURL,
		In:      os.Stdin,
		Out:     os.Stdout,
		Styled:  isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		Logger:  log,
	}
}

type Summary struct {
	Shown   int
	Marked  int
	Skipped int
	Stopped bool
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

const prompt = "Press Enter to mark applied and open the next job, 's' to skip, or type 'exit' to quit: "

// Run walks jobs one at a time and blocks on a console line for each. End
// of input stops the loop like "exit".
func (l *Loop) Run(ctx context.Context, jobs []domain.Job) (Summary, error) {
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}
	in := bufio.NewScanner(l.In)
	var sum Summary

	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		link := scrape.DetailURL(l.BaseURL, j.ID)
		if l.Opener != nil {
			if err := l.Opener.Navigate(ctx, link); err != nil {
				log.Warn("open job link", "job_id", j.ID, "err", err)
			}
		}
		sum.Shown++
		l.show(i+1, len(jobs), j, link)

		var d Decision
		if in.Scan() {
			d = ParseDecision(in.Text())
		} else {
			if err := in.Err(); err != nil {
				return sum, fmt.Errorf("read input: %w", err)
			}
			d = Stop
		}

		switch d {
		case Stop:
			sum.Stopped = true
			return sum, nil
		case Continue:
			sum.Skipped++
		case Mark:
			if _, err := l.Store.MarkApplied(ctx, j.ID); err != nil {
				if errors.Is(err, context.Canceled) {
					return sum, err
				}
				log.Error("mark applied", "job_id", j.ID, "err", err)
				continue
			}
			sum.Marked++
		}
	}
	return sum, nil
}

func (l *Loop) show(n, total int, j domain.Job, link string) {
	heading := fmt.Sprintf("[%d/%d] %s · %s", n, total, orDash(j.Title), orDash(j.Company))
	details := fmt.Sprintf("%s · %s · %s", orDash(j.Location), orDash(j.Level), orDash(j.PostedAgo))
	p := prompt
	if l.Styled {
		heading = titleStyle.Render(heading)
		link = linkStyle.Render(link)
		details = hintStyle.Render(details)
		p = hintStyle.Render(p)
	}
	fmt.Fprintf(l.Out, "\n%s\n%s\n%s\n%s\n", heading, details, link, p)
}

func orDash(s *string) string {
	if v := domain.Deref(s); v != "" {
		return v
	}
	return "-"
}
