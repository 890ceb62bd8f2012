package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	// Register the decoders used to probe natural image dimensions.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// placeholderScheme marks an asset that was never generated.
const placeholderScheme = "placeholder://"

// IsPlaceholderSrc reports whether the source denotes a missing asset for
// which a neutral placeholder box must be emitted instead of a load attempt.
func IsPlaceholderSrc(src string) bool {
	s := strings.TrimSpace(src)
	return s == "" || strings.HasPrefix(s, placeholderScheme)
}

// AssetLoader resolves an image source to raw bytes and a MIME type. It is
// injected per export so tests and callers control all I/O.
type AssetLoader interface {
	Load(ctx context.Context, src string) (data []byte, mimeType string, err error)
}

// ChainLoader is the default AssetLoader: data: URIs, then http(s), then the
// local filesystem.
type ChainLoader struct {
	// HTTPClient is used for http(s) sources. Nil selects a client with a
	// conservative timeout.
	HTTPClient *http.Client
	// MaxBytes caps a single asset; zero means 50 MB.
	MaxBytes int64
}

const defaultMaxAssetBytes = 50 << 20

// Load implements AssetLoader.
func (l *ChainLoader) Load(ctx context.Context, src string) ([]byte, string, error) {
	src = strings.TrimSpace(src)
	switch {
	case strings.HasPrefix(src, "data:image"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetchHTTP(ctx, src)
	default:
		return l.readFile(src)
	}
}

// decodeDataURI splits a data:image/...;base64 URI into bytes and MIME.
func decodeDataURI(src string) ([]byte, string, error) {
	parts := strings.SplitN(src, ",", 2)
	if len(parts) != 2 {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	mimeType := "image/png"
	if strings.Contains(parts[0], "image/jpeg") {
		mimeType = "image/jpeg"
	} else if strings.Contains(parts[0], "image/gif") {
		mimeType = "image/gif"
	} else if strings.Contains(parts[0], "image/webp") {
		mimeType = "image/webp"
	}
	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}
	return data, mimeType, nil
}

func (l *ChainLoader) fetchHTTP(ctx context.Context, src string) ([]byte, string, error) {
	client := l.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes()+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > l.maxBytes() {
		return nil, "", fmt.Errorf("asset exceeds %d bytes", l.maxBytes())
	}
	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = sniffImageMime(data)
	}
	return data, mimeType, nil
}

func (l *ChainLoader) readFile(path string) ([]byte, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if info.Size() > l.maxBytes() {
		return nil, "", fmt.Errorf("asset exceeds %d bytes", l.maxBytes())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, sniffImageMime(data), nil
}

func (l *ChainLoader) maxBytes() int64 {
	if l.MaxBytes > 0 {
		return l.MaxBytes
	}
	return defaultMaxAssetBytes
}

// sniffImageMime guesses the MIME type from magic bytes, defaulting to PNG.
func sniffImageMime(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case len(data) >= 6 && string(data[:6]) == "GIF87a",
		len(data) >= 6 && string(data[:6]) == "GIF89a":
		return "image/gif"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	default:
		return "image/png"
	}
}

// ProbeImageSize returns the natural pixel dimensions of an encoded image.
func ProbeImageSize(data []byte) (w, h int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
