// Package netx fetches file content from signed URLs issued by the API.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Download streams the object behind a signed URL into w and returns the
// number of bytes copied. Signed URLs carry their own authorization, so no
// cookies are sent; a nil client means http.DefaultClient.
func Download(ctx context.Context, client *http.Client, url string, w io.Writer) (int64, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	return io.Copy(w, resp.Body)
}

// DownloadToFile is Download into a newly created file at path. A partially
// written file is removed on failure.
func DownloadToFile(ctx context.Context, client *http.Client, url, path string) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, err
	}

	n, err := Download(ctx, client, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}
