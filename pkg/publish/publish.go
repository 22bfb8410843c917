// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/agencyforge/pagebuilder/pkg/bconfig"
	"github.com/agencyforge/pagebuilder/pkg/doctree"
	"golang.org/x/sync/errgroup"
)

const IndexFileName = "index.html"
const HTMLContentType = "text/html; charset=utf-8"
const DefaultPublishConcurrency = 4

var validDocIdRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Page is a rendered document ready to publish
type Page struct {
	DocId string
	Name  string
	HTML  []byte
}

type Publisher interface {
	// Publish writes the page and returns where it landed (url or path)
	Publish(ctx context.Context, page *Page) (string, error)
	GetPublisherName() string
}

func MakePage(doc *doctree.Document) (*Page, error) {
	html, err := doctree.RenderPage(doc)
	if err != nil {
		return nil, err
	}
	return &Page{DocId: doc.OID, Name: doc.Name, HTML: []byte(html)}, nil
}

func validatePage(page *Page) error {
	if page == nil {
		return fmt.Errorf("nil page")
	}
	if !validDocIdRe.MatchString(page.DocId) {
		return fmt.Errorf("invalid document id %q", page.DocId)
	}
	return nil
}

// ObjectKey is where a page lives under prefix: prefix/docid/index.html
func ObjectKey(prefix string, docId string) string {
	return path.Join(prefix, docId, IndexFileName)
}

type DirPublisher struct {
	Dir string
}

func MakeDirPublisher(dir string) *DirPublisher {
	return &DirPublisher{Dir: dir}
}

func (p *DirPublisher) GetPublisherName() string {
	return "dir"
}

func (p *DirPublisher) Publish(ctx context.Context, page *Page) (string, error) {
	if err := validatePage(page); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fileName := filepath.Join(p.Dir, filepath.FromSlash(ObjectKey("", page.DocId)))
	if err := os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		return "", fmt.Errorf("publishing %s: %w", page.DocId, err)
	}
	// write then rename so readers never see a partial page
	tmpName := fileName + ".tmp"
	if err := os.WriteFile(tmpName, page.HTML, 0644); err != nil {
		return "", fmt.Errorf("publishing %s: %w", page.DocId, err)
	}
	if err := os.Rename(tmpName, fileName); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publishing %s: %w", page.DocId, err)
	}
	log.Printf("[publish] %s -> %s\n", page.DocId, fileName)
	return fileName, nil
}

type PublishResult struct {
	DocId    string `json:"docid"`
	Location string `json:"location"`
}

// PublishAll publishes pages concurrently (at most limit at a time, <= 0 for the default).
// stops at the first error, results are in page order.
func PublishAll(ctx context.Context, pub Publisher, pages []*Page, limit int) ([]PublishResult, error) {
	if limit <= 0 {
		limit = DefaultPublishConcurrency
	}
	results := make([]PublishResult, len(pages))
	var lock sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for idx, page := range pages {
		eg.Go(func() error {
			location, err := pub.Publish(egCtx, page)
			if err != nil {
				return err
			}
			lock.Lock()
			results[idx] = PublishResult{DocId: page.DocId, Location: location}
			lock.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MakePublisher builds the publisher named by publish:kind
func MakePublisher(ctx context.Context, settings bconfig.SettingsType) (Publisher, error) {
	switch settings.PublishKind {
	case "", bconfig.PublishKind_Dir:
		return MakeDirPublisher(settings.GetPublishDir()), nil
	case bconfig.PublishKind_S3:
		return MakeS3Publisher(ctx, settings.PublishBucket, settings.PublishPrefix, settings.PublishRegion)
	default:
		return nil, fmt.Errorf("unknown publish:kind %q", settings.PublishKind)
	}
}
