package invoice

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
)

//go:embed templates/invoice.html
var templateFS embed.FS

var ErrDocumentMissing = errors.New("invoice document not found")

// Renderer turns an invoice into its printable document.
type Renderer interface {
	Render(inv *Invoice) ([]byte, error)
}

// DocumentStore keeps rendered documents. Save returns the path recorded on the
// invoice.
type DocumentStore interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
	Load(ctx context.Context, path string) ([]byte, error)
}

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("invoice.html").Funcs(template.FuncMap{
		"money":    formatAmount,
		"longDate": func(t time.Time) string { return t.Format("2 January 2006") },
	}).ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Render(inv *Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, inv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatAmount groups digits the Indian way: 46800 -> 46,800, 1234567 -> 12,34,567.
func formatAmount(d decimal.Decimal) string {
	s := d.Abs().Truncate(0).String()
	frac := ""
	if !d.Equal(d.Truncate(0)) {
		frac = "." + strings.SplitN(d.Abs().StringFixed(2), ".", 2)[1]
	}

	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		s = strings.Join(groups, ",") + "," + tail
	}
	if d.IsNegative() {
		s = "-" + s
	}
	return s + frac
}

// FileStore writes documents under a directory of an afero filesystem.
type FileStore struct {
	fs  afero.Fs
	dir string
}

func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

// NewOSFileStore stores documents on the local disk.
func NewOSFileStore(dir string) *FileStore {
	return NewFileStore(afero.NewOsFs(), dir)
}

func (s *FileStore) Save(_ context.Context, name string, content []byte) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := afero.WriteFile(s.fs, path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *FileStore) Load(_ context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, ErrDocumentMissing
	}
	content, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrDocumentMissing
	}
	return content, err
}
