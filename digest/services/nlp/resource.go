package nlp

import (
	"context"
	"digest/digest/utils/logging"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/data"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

// PunktPath is where the English punkt training data lives inside the data dir.
const PunktPath = "tokenizers/punkt/english.json"

// Resource makes sure the sentence tokenizer training data exists on disk.
// The data is downloaded from SourceURL when set, otherwise the copy bundled
// with the tokenizer library is written out.
type Resource struct {
	Dir       string
	SourceURL string
	Client    *http.Client

	once sync.Once
	path string
	err  error
}

func NewResource(dir, sourceURL string) *Resource {
	return &Resource{
		Dir:       dir,
		SourceURL: sourceURL,
		Client:    &http.Client{Timeout: time.Minute},
	}
}

// Ensure is idempotent: the first call does the work, later calls return the
// first call's result.
func (r *Resource) Ensure(ctx context.Context) (string, error) {
	r.once.Do(func() {
		r.path, r.err = r.ensure(ctx)
	})
	return r.path, r.err
}

func (r *Resource) ensure(ctx context.Context) (string, error) {
	path := filepath.Join(r.Dir, PunktPath)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	var (
		b   []byte
		err error
	)
	if r.SourceURL != "" {
		b, err = r.download(ctx)
	} else {
		b, err = data.Asset("data/english.json")
	}
	if err != nil {
		return "", fmt.Errorf("fetch punkt data: %w", err)
	}
	if _, err := sentences.LoadTraining(b); err != nil {
		return "", fmt.Errorf("invalid punkt data: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	logging.AppLogger.Info("tokenizer data installed", zap.String("path", path), zap.Int("bytes", len(b)))
	return path, nil
}

func (r *Resource) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.SourceURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// LoadTokenizer builds an English punkt tokenizer from training data on disk.
func LoadTokenizer(path string) (*PunktSplitter, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	training, err := sentences.LoadTraining(b)
	if err != nil {
		return nil, fmt.Errorf("load punkt data: %w", err)
	}
	tok, err := english.NewSentenceTokenizer(training)
	if err != nil {
		return nil, err
	}
	return &PunktSplitter{tok: tok}, nil
}
