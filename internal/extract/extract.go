// Package extract pulls structured fields out of rendered listing and detail
// documents.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/realtime-video-scraper/internal/scraper"
)

// Listing page selectors.
const (
	selCard      = "div.video-thumb"
	selCardInfo  = "div.video-thumb-info"
	selCardLink  = "a.video-thumb-info__name"
	selThumbnail = "img.video-thumb__image"
	selDuration  = "div.video-thumb__duration"
)

// Detail page selectors.
const (
	selVideo    = "video"
	selQuality  = "span.video-quality-value"
	selViews    = "span.views-value"
	selUploader = "a.author-name"
)

// Render-wait targets. The page is considered usable once these exist.
const (
	// ListingReadySelector marks the listing container.
	ListingReadySelector = selCardInfo
	// DetailReadySelector marks the detail page's primary media element.
	DetailReadySelector = selVideo
)

// thumbnailAttrs is the attribute fallback chain for lazy-loaded images.
var thumbnailAttrs = []string{"data-src", "data-original", "src"}

// ParseListing enumerates up to maxItems candidate items from a rendered
// listing page, in document order. Detail links are resolved against baseURL.
// Cards without a link are skipped entirely: they are neither enumerated nor
// reported as failures.
func ParseListing(html, baseURL string, maxItems int) ([]scraper.ListingItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing document: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var items []scraper.ListingItem
	doc.Find(selCard).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if maxItems > 0 && i >= maxItems {
			return false
		}
		link := card.Find(selCardInfo).Find(selCardLink).First()
		if link.Length() == 0 {
			return true
		}
		href, _ := link.Attr("href")
		items = append(items, scraper.ListingItem{
			Index:        i,
			Title:        attrOr(link, "title", scraper.UntitledItem),
			DetailURL:    resolveURL(base, href),
			ThumbnailURL: thumbnailURL(card.Find(selThumbnail).First()),
			Duration:     textOr(card.Find(selDuration).First(), scraper.NotFound),
		})
		return true
	})
	return items, nil
}

// ParseDetail extracts the detail-page fields from a rendered document. Every
// field is attempted; absence resolves to a sentinel, never an error.
func ParseDetail(html string) (scraper.DetailRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return scraper.DetailRecord{}, fmt.Errorf("parse detail document: %w", err)
	}
	rec := scraper.DetailRecord{
		Quality:  textOr(doc.Find(selQuality).First(), scraper.NotAvailable),
		Views:    textOr(doc.Find(selViews).First(), scraper.NotAvailable),
		Uploader: textOr(doc.Find(selUploader).First(), scraper.NotAvailable),
	}
	if src, ok := doc.Find(selVideo).First().Attr("src"); ok {
		rec.DownloadURL = src
	}
	return rec, nil
}

func thumbnailURL(img *goquery.Selection) string {
	if img.Length() == 0 {
		return scraper.MissingThumbnail
	}
	for _, attr := range thumbnailAttrs {
		if val, ok := img.Attr(attr); ok && val != "" {
			return val
		}
	}
	return scraper.MissingThumbnail
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func attrOr(sel *goquery.Selection, attr, fallback string) string {
	if val, ok := sel.Attr(attr); ok && val != "" {
		return val
	}
	return fallback
}

func textOr(sel *goquery.Selection, fallback string) string {
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return fallback
	}
	return text
}
