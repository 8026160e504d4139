package model

import "time"

// MaxTextLength bounds post and comment text, counted in characters.
const MaxTextLength = 200

// IndexCachePrefix names the home feed entry in the page cache.
const IndexCachePrefix = "index_page"

// IndexCacheTTL is the default lifetime of the cached home feed.
const IndexCacheTTL = 20 * time.Second

const (
	// ImageKeyPrefix is the object storage folder for post uploads.
	ImageKeyPrefix = "posts/"
	// ThumbnailKeyPrefix holds the resized copies built by the worker.
	ThumbnailKeyPrefix = "posts/thumbs/"
	// ThumbnailSize is the bounding box of generated thumbnails.
	ThumbnailSize = 600
)
