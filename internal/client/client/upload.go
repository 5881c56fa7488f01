package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/common"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadFile streams r as the multipart field "file" of
// POST /folders/:id/files. When size is known the request carries an exact
// Content-Length; onProgress (optional) is called as file bytes are sent.
func (c *HTTPClient) UploadFile(ctx context.Context, folderID int64, name string, r io.Reader, size int64, onProgress ProgressFunc) (*models.File, error) {
	const op = "UploadFile"
	if folderID <= 0 || r == nil {
		return nil, setupError(op, "file and folder ID are required for upload")
	}
	if common.Blank(name) {
		return nil, setupError(op, "file name is required for upload")
	}

	prefix, suffix, contentType, err := multipartFrame(name)
	if err != nil {
		return nil, &APIError{Op: op, Kind: KindSetup, Message: err.Error(), Err: err}
	}

	total := size
	if total < 0 {
		total = 0
	}
	body := io.MultiReader(
		bytes.NewReader(prefix),
		&progressReader{r: r, total: total, fn: onProgress},
		bytes.NewReader(suffix),
	)

	length := int64(-1)
	if size >= 0 {
		length = int64(len(prefix)) + size + int64(len(suffix))
	}

	var out models.File
	err = c.do(ctx, call{
		op:            op,
		method:        http.MethodPost,
		path:          folderPath(folderID) + "/files",
		raw:           body,
		contentType:   contentType,
		contentLength: length,
		noTimeout:     true,
	}, &out)
	if err != nil {
		return nil, err
	}

	c.metrics.uploaded(size)
	return &out, nil
}

// multipartFrame renders everything around the file content of a
// single-part form: the part header and the closing boundary.
func multipartFrame(name string) (prefix, suffix []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filepath.Base(name))))
	h.Set("Content-Type", partContentType(name))
	if _, err := mw.CreatePart(h); err != nil {
		return nil, nil, "", err
	}
	prefix = append([]byte(nil), buf.Bytes()...)

	buf.Reset()
	if err := mw.Close(); err != nil {
		return nil, nil, "", err
	}
	suffix = append([]byte(nil), buf.Bytes()...)

	return prefix, suffix, mw.FormDataContentType(), nil
}

func partContentType(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.fn != nil {
			p.fn(p.loaded, p.total)
		}
	}
	return n, err
}
