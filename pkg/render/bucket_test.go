package render

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
)

type fakeBucket struct {
	objects map[string]string
	err     error
	keys    []string
}

func (f *fakeBucket) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
		ETag:          aws.String(`"etag"`),
	}, nil
}

func TestObjectKey(t *testing.T) {
	cases := map[string]string{
		"/":                 "index.html",
		"":                  "index.html",
		"/contact/":         "contact/index.html",
		"/css/site.css":     "css/site.css",
		"/../../etc/passwd": "etc/passwd",
		"/a//b/":            "a/b/index.html",
	}
	for in, want := range cases {
		assert.Equal(t, want, objectKey(in), in)
	}
}

func TestBucketRenderer(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{
		"index.html":   "<h1>home</h1>",
		"css/site.css": "body{}",
	}}
	renderer := NewBucketRenderer(bucket, "site")

	t.Run("serves index with content type from extension", func(t *testing.T) {
		rec := httptest.NewRecorder()
		renderer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<h1>home</h1>", rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
		assert.Equal(t, `"etag"`, rec.Header().Get("ETag"))
	})

	t.Run("head has no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		renderer.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/css/site.css", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "6", rec.Header().Get("Content-Length"))
	})

	t.Run("missing object", func(t *testing.T) {
		rec := httptest.NewRecorder()
		renderer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects writes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		renderer.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		failing := NewBucketRenderer(&fakeBucket{err: errors.New("timeout")}, "site")
		rec := httptest.NewRecorder()
		failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestNewLocalDirectory(t *testing.T) {
	dir := t.TempDir()
	h, err := New(context.Background(), Options{Dir: dir})
	assert.NoError(t, err)
	assert.NotNil(t, h)

	_, err = New(context.Background(), Options{})
	assert.Error(t, err)
}
