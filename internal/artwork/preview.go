package artwork

import (
	"context"
	"image"
	"sync"

	vhttp "github.com/handiism/vinyl-vault/internal/http"
	ioutils "github.com/handiism/vinyl-vault/internal/io"
)

// maxCachedCovers bounds the in-memory cover cache.
const maxCachedCovers = 16

// Previewer downloads covers and shrinks them for terminal display.
type Previewer struct {
	http   *vhttp.Client
	images *ioutils.ImageService

	mu    sync.Mutex
	cache map[string][]byte
}

// NewPreviewer creates a Previewer.
func NewPreviewer(httpClient *vhttp.Client, images *ioutils.ImageService) *Previewer {
	return &Previewer{
		http:   httpClient,
		images: images,
		cache:  make(map[string][]byte),
	}
}

// Thumbnail returns the cover at url scaled to fit within width x height.
func (p *Previewer) Thumbnail(ctx context.Context, url string, width, height int) (image.Image, error) {
	data, err := p.download(ctx, url)
	if err != nil {
		return nil, err
	}
	return p.images.Thumbnail(ctx, data, width, height)
}

func (p *Previewer) download(ctx context.Context, url string) ([]byte, error) {
	p.mu.Lock()
	data, ok := p.cache[url]
	p.mu.Unlock()
	if ok {
		return data, nil
	}

	data, err := p.http.DownloadBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if len(p.cache) >= maxCachedCovers {
		clear(p.cache)
	}
	p.cache[url] = data
	p.mu.Unlock()

	return data, nil
}
