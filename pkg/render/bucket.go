package render

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"contact-form-backend/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const indexDocument = "index.html"

// ObjectGetter is the part of the S3 API the renderer needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// BucketRenderer serves GET and HEAD requests from bucket objects keyed by
// the request path. Paths ending in "/" resolve to their index.html.
type BucketRenderer struct {
	client ObjectGetter
	bucket string
}

func NewBucketRenderer(client ObjectGetter, bucket string) *BucketRenderer {
	return &BucketRenderer{client: client, bucket: bucket}
}

func (b *BucketRenderer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	key := objectKey(r.URL.Path)
	out, err := b.client.GetObject(r.Context(), &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			http.NotFound(w, r)
			return
		}
		logger.Log.ErrorContext(r.Context(), "Render object fetch failed", "key", key, "error", err.Error())
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	defer out.Body.Close()

	contentType := aws.ToString(out.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(path.Ext(key)); byExt != "" {
			contentType = byExt
		}
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if out.ETag != nil {
		w.Header().Set("ETag", *out.ETag)
	}
	if out.ContentLength != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*out.ContentLength, 10))
	}
	if out.CacheControl != nil {
		w.Header().Set("Cache-Control", *out.CacheControl)
	}

	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.Copy(w, out.Body)
}

// objectKey maps a URL path to a bucket key.
func objectKey(urlPath string) string {
	key := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if key == "" || key == "." {
		return indexDocument
	}
	if strings.HasSuffix(urlPath, "/") {
		return key + "/" + indexDocument
	}
	return key
}
