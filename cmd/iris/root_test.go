package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fishmeister1/iris/pkg/capture"
	"github.com/fishmeister1/iris/pkg/session"
	"github.com/fishmeister1/iris/pkg/vision"
)

func testApp(t *testing.T, analyzer vision.Analyzer) *app {
	t.Helper()
	m, err := session.New(session.Options{Analyzer: analyzer})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close() })
	return &app{analyzer: analyzer, session: m}
}

func writePNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDescribePrintsSources(t *testing.T) {
	mock := &vision.Mock{AnalyzeFunc: func(context.Context, []byte) (*vision.Result, error) {
		return &vision.Result{
			Description: "A landmark.",
			Sources:     []vision.Source{{Title: "Wiki", URL: "https://x"}},
		}, nil
	}}
	a := testApp(t, mock)

	var out bytes.Buffer
	if err := a.describe(context.Background(), &out, capture.FromPath(writePNG(t))); err != nil {
		t.Fatalf("describe: %v", err)
	}
	want := "A landmark.\n\nSources:\n  1. Wiki <https://x>\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestDescribeReportsAnalysisFailure(t *testing.T) {
	mock := &vision.Mock{AnalyzeFunc: func(context.Context, []byte) (*vision.Result, error) {
		return nil, &vision.TransportError{StatusCode: 502}
	}}
	a := testApp(t, mock)

	err := a.describe(context.Background(), &bytes.Buffer{}, capture.FromPath(writePNG(t)))
	if err == nil || !strings.Contains(err.Error(), "Analysis Failed") {
		t.Errorf("expected analysis failure, got %v", err)
	}
}

func TestDescribeMissingFile(t *testing.T) {
	a := testApp(t, vision.NewMock("unused"))

	err := a.describe(context.Background(), &bytes.Buffer{}, capture.FromPath(filepath.Join(t.TempDir(), "nope.png")))
	if err == nil {
		t.Error("expected error for missing file")
	}
	if a.session.Phase() != session.Capturing {
		t.Errorf("expected Capturing, got %s", a.session.Phase())
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "analyze", "snap"} {
		if cmd.Command(name) == nil {
			t.Errorf("missing %s subcommand", name)
		}
	}
}
