package scrape_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// fakeSession serves canned markup per URL. A URL may have several pages;
// the n-th navigation to it shows pages[n], the last one repeating.
type fakeSession struct {
	mu sync.Mutex

	pages  map[string][]string
	navErr map[string]error

	current string
	navs    []string
	visits  map[string]int

	heights []int64
	scrolls int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		pages:  map[string][]string{},
		navErr: map[string]error{},
		visits: map[string]int{},
	}
}

func (f *fakeSession) serve(url string, markup ...string) {
	f.pages[url] = markup
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navs = append(f.navs, url)
	if err := f.navErr[url]; err != nil {
		return err
	}
	f.current = url
	f.visits[url]++
	return nil
}

func (f *fakeSession) PageSource(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markup(), nil
}

func (f *fakeSession) markup() string {
	seq := f.pages[f.current]
	if len(seq) == 0 {
		return "<html><body></body></html>"
	}
	n := f.visits[f.current] - 1
	if n >= len(seq) {
		n = len(seq) - 1
	}
	return seq[n]
}

func (f *fakeSession) Find(_ context.Context, selector string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.markup()))
	if err != nil {
		return nil, err
	}
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out, nil
}

func (f *fakeSession) Execute(_ context.Context, script string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.Contains(script, "scrollTo") {
		f.scrolls++
		return nil
	}
	p, ok := out.(*int64)
	if !ok {
		return errors.New("unexpected script")
	}
	if len(f.heights) == 0 {
		*p = 0
		return nil
	}
	*p = f.heights[0]
	if len(f.heights) > 1 {
		f.heights = f.heights[1:]
	}
	return nil
}

func (f *fakeSession) navigations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.navs...)
}

// sleepRecorder replaces real waits.
type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (r *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.slept = append(r.slept, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) durations() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.slept...)
}

type fakeClassifier struct{}

func (fakeClassifier) Classify(text string) (string, float64, error) {
	switch {
	case strings.Contains(text, "Olá"):
		return "pt", 0.9, nil
	case strings.TrimSpace(text) == "":
		return "", 0, errors.New("empty text")
	default:
		return "en", 0.9, nil
	}
}
