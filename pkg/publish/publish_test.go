// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/agencyforge/pagebuilder/pkg/bconfig"
	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/doctree"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestPage(t *testing.T, name string) *Page {
	doc := doctree.MakeDocument(name, doctree.DocKind_Page)
	btn, err := compfactory.MakeFactory(nil).Create("button", nil)
	require.NoError(t, err)
	require.NoError(t, doc.Insert("", -1, btn))
	page, err := MakePage(doc)
	require.NoError(t, err)
	return page
}

func TestDirPublisher(t *testing.T) {
	dir := t.TempDir()
	pub := MakeDirPublisher(dir)
	page := makeTestPage(t, "Landing")
	location, err := pub.Publish(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, page.DocId, IndexFileName), location)
	barr, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Contains(t, string(barr), "<title>Landing</title>")

	_, err = pub.Publish(context.Background(), &Page{DocId: "../escape"})
	assert.Error(t, err)
}

type fakeS3 struct {
	lock   sync.Mutex
	inputs map[string]*s3.PutObjectInput
	bodies map[string]string
	failOn string
	apiErr error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(params.Key)
	if f.apiErr != nil {
		return nil, f.apiErr
	}
	if f.failOn != "" && key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.inputs[key] = params
	f.bodies[key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func makeFakeS3() *fakeS3 {
	return &fakeS3{inputs: make(map[string]*s3.PutObjectInput), bodies: make(map[string]string)}
}

func TestS3Publisher(t *testing.T) {
	client := makeFakeS3()
	pub := MakeS3PublisherWithClient(client, "agency-sites", "sites/")
	page := makeTestPage(t, "Promo")
	location, err := pub.Publish(context.Background(), page)
	require.NoError(t, err)
	key := "sites/" + page.DocId + "/index.html"
	assert.Equal(t, "s3://agency-sites/"+key, location)
	input := client.inputs[key]
	require.NotNil(t, input)
	assert.Equal(t, "agency-sites", aws.ToString(input.Bucket))
	assert.Equal(t, HTMLContentType, aws.ToString(input.ContentType))
	assert.Contains(t, client.bodies[key], "Click Me")

	client.failOn = key
	_, err = pub.Publish(context.Background(), page)
	assert.ErrorContains(t, err, "access denied")
}

func TestS3PublisherApiErrors(t *testing.T) {
	client := makeFakeS3()
	pub := MakeS3PublisherWithClient(client, "missing-bucket", "")
	page := makeTestPage(t, "Promo")

	client.apiErr = &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	_, err := pub.Publish(context.Background(), page)
	assert.ErrorIs(t, err, ErrBucketNotFound)

	client.apiErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}
	_, err = pub.Publish(context.Background(), page)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorContains(t, err, "nope")

	client.apiErr = &smithy.GenericAPIError{Code: "SlowDown", Message: "reduce rate"}
	_, err = pub.Publish(context.Background(), page)
	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "SlowDown", apiErr.ErrorCode())
}

type countingPublisher struct {
	inflight atomic.Int32
	maxSeen  atomic.Int32
	fail     string
}

func (p *countingPublisher) GetPublisherName() string { return "counting" }

func (p *countingPublisher) Publish(ctx context.Context, page *Page) (string, error) {
	cur := p.inflight.Add(1)
	defer p.inflight.Add(-1)
	for {
		old := p.maxSeen.Load()
		if cur <= old || p.maxSeen.CompareAndSwap(old, cur) {
			break
		}
	}
	if page.DocId == p.fail {
		return "", errors.New("publish failed")
	}
	return "mem://" + page.DocId, nil
}

func TestPublishAll(t *testing.T) {
	var pages []*Page
	for i := 0; i < 10; i++ {
		pages = append(pages, makeTestPage(t, "p"))
	}
	pub := &countingPublisher{}
	results, err := PublishAll(context.Background(), pub, pages, 3)
	require.NoError(t, err)
	require.Len(t, results, 10)
	for idx, res := range results {
		assert.Equal(t, pages[idx].DocId, res.DocId)
		assert.Equal(t, "mem://"+pages[idx].DocId, res.Location)
	}
	assert.LessOrEqual(t, pub.maxSeen.Load(), int32(3))

	pub = &countingPublisher{fail: pages[4].DocId}
	_, err = PublishAll(context.Background(), pub, pages, 0)
	assert.ErrorContains(t, err, "publish failed")
}

func TestMakePublisher(t *testing.T) {
	dir := t.TempDir()
	pub, err := MakePublisher(context.Background(), bconfig.SettingsType{PublishKind: "dir", PublishDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "dir", pub.GetPublisherName())
	_, err = MakePublisher(context.Background(), bconfig.SettingsType{PublishKind: "ftp"})
	assert.Error(t, err)
}
