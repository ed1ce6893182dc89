// Package imagefetch retrieves image bytes from http(s) and data: URLs with
// size, status and content-type checks.
package imagefetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/camelrate/pkg/formatting"
)

var (
	// ErrStatus indicates the remote server answered with a non-2xx status.
	ErrStatus = errors.New("unexpected response status")
	// ErrNotImage indicates the payload is not an image.
	ErrNotImage = errors.New("content is not an image")
	// ErrTooLarge indicates the payload exceeds the configured limit.
	ErrTooLarge = errors.New("image exceeds size limit")
	// ErrUnsupportedURL indicates the URL scheme cannot be fetched.
	ErrUnsupportedURL = errors.New("unsupported image url")
)

// Image is a fetched image payload.
type Image struct {
	Data        []byte
	ContentType string
}

// Fetcher downloads images.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// New creates a Fetcher with a per-request timeout and a payload cap.
// A non-positive maxBytes disables the cap.
func New(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch retrieves the image referenced by rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return f.decodeDataURL(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return nil, f.tooLarge(resp.ContentLength)
	}

	data, err := f.read(resp.Body)
	if err != nil {
		return nil, err
	}

	return f.image(data, resp.Header.Get("Content-Type"))
}

func (f *Fetcher) read(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, f.tooLarge(-1)
	}
	return data, nil
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>.
func (f *Fetcher) decodeDataURL(raw string) (*Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data url", ErrUnsupportedURL)
	}

	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
		}
		data = []byte(unescaped)
	}

	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, f.tooLarge(int64(len(data)))
	}

	return f.image(data, mediaType)
}

// image resolves the content type, preferring a sniffed image type over a
// generic or missing header.
func (f *Fetcher) image(data []byte, declared string) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrNotImage)
	}

	contentType := declared
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}

	return &Image{Data: data, ContentType: contentType}, nil
}

// tooLarge wraps ErrTooLarge with the limit and, when known, the offending size.
func (f *Fetcher) tooLarge(size int64) error {
	limit := formatting.FormatBytes(f.maxBytes, 1)
	if size < 0 {
		return fmt.Errorf("%w: over %s", ErrTooLarge, limit)
	}
	return fmt.Errorf("%w: %s over %s", ErrTooLarge, formatting.FormatBytes(size, 1), limit)
}
