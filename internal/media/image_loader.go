package media

import (
	"bytes"
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
)

const maxImageBytes = 10 * 1024 * 1024

var ErrInvalidImage = errors.New("invalid image data")

// FileCache indexes downloaded files by url.
type FileCache interface {
	GetCachedFile(ctx context.Context, url string) (string, error)
	SaveCachedFile(ctx context.Context, url string, data io.Reader) (string, error)
}

// ImageLoader fetches cover art through a memory LRU, the on-disk file cache
// and finally the network. Callbacks are delivered through dispatch.
type ImageLoader struct {
	files      FileCache
	httpClient *retryablehttp.Client
	lruCache   *LRUCache
	inflight   sync.Map
	userAgent  string
	dispatch   func(func())
	logger     *zap.Logger

	loadQueue chan *loadRequest
	workers   int
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

type CachedResource struct {
	resource   fyne.Resource
	lastAccess time.Time
	size       int64
	url        string
}

type LRUCache struct {
	capacity int
	cache    map[string]*list.Element
	list     *list.List
	mu       sync.Mutex
}

type lruItem struct {
	key   string
	value *CachedResource
}

type loadRequest struct {
	url      string
	callback func(fyne.Resource, error)
}

func NewLRUCache(capacity int) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		list:     list.New(),
	}
}

func (lru *LRUCache) Get(key string) (*CachedResource, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.cache[key]; ok {
		lru.list.MoveToFront(elem)
		item := elem.Value.(*lruItem)
		item.value.lastAccess = time.Now()
		return item.value, true
	}
	return nil, false
}

func (lru *LRUCache) Put(key string, value *CachedResource) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.cache[key]; ok {
		lru.list.MoveToFront(elem)
		elem.Value.(*lruItem).value = value
		return
	}

	if lru.list.Len() >= lru.capacity {
		if oldest := lru.list.Back(); oldest != nil {
			lru.list.Remove(oldest)
			delete(lru.cache, oldest.Value.(*lruItem).key)
		}
	}

	lru.cache[key] = lru.list.PushFront(&lruItem{key: key, value: value})
}

// RemoveOlderThan evicts entries not accessed since cutoff.
func (lru *LRUCache) RemoveOlderThan(cutoff time.Time) int {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	removed := 0
	for elem := lru.list.Back(); elem != nil; {
		prev := elem.Prev()
		item := elem.Value.(*lruItem)
		if item.value.lastAccess.Before(cutoff) {
			lru.list.Remove(elem)
			delete(lru.cache, item.key)
			removed++
		}
		elem = prev
	}
	return removed
}

func (lru *LRUCache) Len() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.list.Len()
}

func (lru *LRUCache) Clear() {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	lru.cache = make(map[string]*list.Element)
	lru.list = list.New()
}

func NewImageLoader(cfg *config.Config, files FileCache, dispatch func(func()), logger *zap.Logger) *ImageLoader {
	logger = logging.OrNop(logger).Named("images")

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.API.Retries
	client.HTTPClient.Timeout = time.Duration(cfg.API.Timeout) * time.Second
	client.Logger = logging.ForRetryClient(logger)

	if dispatch == nil {
		dispatch = fyne.Do
	}

	ctx, cancel := context.WithCancel(context.Background())

	loader := &ImageLoader{
		files:      files,
		httpClient: client,
		lruCache:   NewLRUCache(256),
		userAgent:  cfg.API.UserAgent,
		dispatch:   dispatch,
		logger:     logger,
		loadQueue:  make(chan *loadRequest, 256),
		workers:    4,
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < loader.workers; i++ {
		loader.wg.Add(1)
		go loader.worker()
	}

	loader.wg.Add(1)
	go loader.cleanupWorker()

	return loader
}

func (l *ImageLoader) worker() {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case req := <-l.loadQueue:
			resource, err := l.GetResource(req.url)
			if req.callback != nil {
				l.dispatch(func() { req.callback(resource, err) })
			}
		}
	}
}

func (l *ImageLoader) cleanupWorker() {
	defer l.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			if n := l.lruCache.RemoveOlderThan(time.Now().Add(-30 * time.Minute)); n > 0 {
				l.logger.Debug("evicted idle covers", zap.Int("count", n))
			}
		}
	}
}

// GetResource loads imageURL synchronously. Failures return the placeholder
// icon together with the error.
func (l *ImageLoader) GetResource(imageURL string) (fyne.Resource, error) {
	if imageURL == "" {
		return theme.MediaMusicIcon(), nil
	}

	if cached, ok := l.lruCache.Get(imageURL); ok {
		return cached.resource, nil
	}

	// one download per url; concurrent callers share the result
	call := &inflightCall{done: make(chan struct{})}
	if existing, loaded := l.inflight.LoadOrStore(imageURL, call); loaded {
		c := existing.(*inflightCall)
		<-c.done
		return c.resource, c.err
	}

	call.resource, call.err = l.loadResource(imageURL)
	l.inflight.Delete(imageURL)
	close(call.done)

	return call.resource, call.err
}

type inflightCall struct {
	done     chan struct{}
	resource fyne.Resource
	err      error
}

func (l *ImageLoader) loadResource(imageURL string) (fyne.Resource, error) {
	ctx, cancel := context.WithTimeout(l.ctx, 15*time.Second)
	defer cancel()

	if l.files != nil {
		if path, err := l.files.GetCachedFile(ctx, imageURL); err == nil && path != "" {
			if data, err := os.ReadFile(path); err == nil && isValidImageData(data) {
				return l.remember(imageURL, data), nil
			}
		}
	}

	data, err := l.downloadImage(ctx, imageURL)
	if err != nil {
		l.logger.Debug("cover download failed", zap.String("url", imageURL), zap.Error(err))
		return theme.MediaMusicIcon(), err
	}

	if l.files != nil {
		if _, err := l.files.SaveCachedFile(ctx, imageURL, bytes.NewReader(data)); err != nil {
			l.logger.Debug("failed to cache cover", zap.String("url", imageURL), zap.Error(err))
		}
	}

	return l.remember(imageURL, data), nil
}

func (l *ImageLoader) remember(imageURL string, data []byte) fyne.Resource {
	res := fyne.NewStaticResource(resourceName(imageURL), data)
	l.lruCache.Put(imageURL, &CachedResource{
		resource:   res,
		lastAccess: time.Now(),
		size:       int64(len(data)),
		url:        imageURL,
	})
	return res
}

// GetResourceAsync delivers the resource to callback on the UI goroutine.
func (l *ImageLoader) GetResourceAsync(imageURL string, callback func(fyne.Resource, error)) {
	if imageURL == "" {
		l.dispatch(func() { callback(theme.MediaMusicIcon(), nil) })
		return
	}

	if cached, ok := l.lruCache.Get(imageURL); ok {
		l.dispatch(func() { callback(cached.resource, nil) })
		return
	}

	select {
	case l.loadQueue <- &loadRequest{url: imageURL, callback: callback}:
	default:
		go func() {
			resource, err := l.GetResource(imageURL)
			l.dispatch(func() { callback(resource, err) })
		}()
	}
}

// Preload warms the cache without callbacks; a full queue drops the rest.
func (l *ImageLoader) Preload(urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := l.lruCache.Get(u); ok {
			continue
		}
		select {
		case l.loadQueue <- &loadRequest{url: u}:
		default:
			return
		}
	}
}

func isValidImageData(data []byte) bool {
	if len(data) < 10 {
		return false
	}

	headers := [][]byte{
		{0xFF, 0xD8, 0xFF},       // jpeg
		{0x89, 0x50, 0x4E, 0x47}, // png
		{0x47, 0x49, 0x46},       // gif
		{0x52, 0x49, 0x46, 0x46}, // webp
	}
	for _, h := range headers {
		if bytes.HasPrefix(data, h) {
			return true
		}
	}

	head := bytes.TrimSpace(data[:min(len(data), 256)])
	return bytes.HasPrefix(head, []byte("<svg")) || bytes.HasPrefix(head, []byte("<?xml"))
}

func (l *ImageLoader) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("invalid content type: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image data: %w", err)
	}

	if !isValidImageData(data) {
		return nil, ErrInvalidImage
	}
	return data, nil
}

func resourceName(imageURL string) string {
	name := filepath.Base(strings.SplitN(imageURL, "?", 2)[0])
	if name == "." || name == "/" || name == "" {
		return "cover"
	}
	return name
}

func (l *ImageLoader) CacheStats() (itemCount int, totalSize int64) {
	l.lruCache.mu.Lock()
	defer l.lruCache.mu.Unlock()

	for elem := l.lruCache.list.Front(); elem != nil; elem = elem.Next() {
		itemCount++
		totalSize += elem.Value.(*lruItem).value.size
	}
	return
}

// Close stops the workers. Queued requests are dropped.
func (l *ImageLoader) Close() {
	l.cancel()
	l.wg.Wait()
}
