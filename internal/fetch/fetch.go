// Copyright 2024 The llar Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fetch downloads and unpacks source release archives.
package fetch

import (
	"context"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"
)

// Downloader fetches archives over HTTP(S).
type Downloader struct {
	httpClient *http.Client
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Downloader) {
		d.httpClient = c
	}
}

// New creates a Downloader.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get downloads rawURL into dir and returns the path of the local
// archive, named after the last element of the URL path.
func (d *Downloader) Get(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = "archive.tar.gz"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, name)
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

// Verify checks the archive against an expected digest such as
// "sha256:<hex>". An empty expected digest verifies nothing.
func Verify(archive, expected string) error {
	if expected == "" {
		return nil
	}
	want, err := digest.Parse(expected)
	if err != nil {
		return fmt.Errorf("source digest %q: %w", expected, err)
	}
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	got, err := want.Algorithm().FromReader(f)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: digest mismatch: got %s, want %s", filepath.Base(archive), got, want)
	}
	return nil
}
