package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshsymonds/hourwatch/internal/extract"
)

const bodyPreviewLimit = 120

// PrintHuman writes a readable digest of summaries to w.
func PrintHuman(summaries []extract.Summary, processed int, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "hourwatch — %d unread in the last hour (%d processed total)\n", len(summaries), processed)
	for _, s := range summaries {
		fmt.Fprintf(&builder, "\n[%s]\n", s.ID)
		fmt.Fprintf(&builder, "  from:    %s\n", s.From)
		fmt.Fprintf(&builder, "  subject: %s\n", s.Subject)
		fmt.Fprintf(&builder, "  date:    %s\n", s.Date)
		fmt.Fprintf(&builder, "  body:    %s\n", preview(s.Body, bodyPreviewLimit))
	}
	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write human report: %w", err)
	}
	return nil
}

// PrintJSON writes summaries as an indented JSON array. An empty batch is
// written as [] rather than null.
func PrintJSON(summaries []extract.Summary, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	if summaries == nil {
		summaries = []extract.Summary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return fmt.Errorf("encode summaries: %w", err)
	}
	return nil
}

// WriteJSON serializes summaries to a path relative to the working directory.
func WriteJSON(summaries []extract.Summary, path string) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean = filepath.Clean(clean)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("output path must be relative, got %s", clean)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path %s escapes working directory", clean)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	abs := filepath.Join(wd, clean)
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()
	return PrintJSON(summaries, f)
}

// preview flattens whitespace so a body fits on one line.
func preview(body string, n int) string {
	flat := strings.Join(strings.Fields(body), " ")
	if len([]rune(flat)) <= n {
		return flat
	}
	return extract.Truncate(flat, n-1) + "…"
}
