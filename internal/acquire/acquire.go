// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads PDF reports from URLs so they can be ingested
// like local files.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/report-qa/internal/httputil"
)

// ErrNotPDF is returned when the downloaded body does not start with the
// PDF magic bytes.
var ErrNotPDF = errors.New("response is not a PDF")

// UserAgent is sent with every download.
const UserAgent = "report-qa/1.0"

var pdfMagic = []byte("%PDF-")

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Download fetches rawURL into dir and returns the saved path. The file
// is named after the Content-Disposition filename, else the last URL path
// segment, and always ends in .pdf. The body is written to a temporary
// file and renamed only once it is known to be a PDF.
func Download(ctx context.Context, client *http.Client, rawURL, dir string, log logrus.FieldLogger) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0, log)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: HTTP %d", rawURL, resp.StatusCode)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".acquire-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	head := make([]byte, len(pdfMagic))
	n, _ := io.ReadFull(resp.Body, head)
	if !bytes.Equal(head[:n], pdfMagic) {
		tmp.Close()
		return "", fmt.Errorf("downloading %s: %w", rawURL, ErrNotPDF)
	}

	_, copyErr := io.Copy(tmp, io.MultiReader(bytes.NewReader(head[:n]), resp.Body))
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	dest := filepath.Join(dir, fileName(resp, rawURL))
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	log.WithFields(logrus.Fields{"url": rawURL, "path": dest}).Info("downloaded")
	return dest, nil
}

// fileName picks a safe base name for the download.
func fileName(resp *http.Response, rawURL string) string {
	var name string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	if name == "" {
		if u, err := url.Parse(rawURL); err == nil {
			name = path.Base(u.Path)
		}
	}
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" || name == ".." {
		name = "download"
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
