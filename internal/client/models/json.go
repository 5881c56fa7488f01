package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestamp layouts accepted from the API, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// ParseTime parses an API timestamp. Values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseOrKeep parses s, returning s itself as the second value when it is
// not a recognised timestamp. One bad row must not fail a whole listing.
func parseOrKeep(s string) (time.Time, string) {
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, s
	}
	return t, ""
}

// flexInt accepts 123, 123.0, "123" and null/"" (zero).
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*n = 0
	case float64:
		*n = flexInt(x)
	case string:
		x = strings.TrimSpace(x)
		if x == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = flexInt(f)
	default:
		*n = 0
	}
	return nil
}

type folderJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at,omitempty"`
	IsProtected bool   `json:"is_protected"`
}

func (f Folder) MarshalJSON() ([]byte, error) {
	out := folderJSON{ID: f.ID, Name: f.Name, IsProtected: f.IsProtected}
	if !f.CreatedAt.IsZero() {
		out.CreatedAt = f.CreatedAt.Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

func (f *Folder) UnmarshalJSON(b []byte) error {
	var in folderJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*f = Folder{ID: in.ID, Name: in.Name, IsProtected: in.IsProtected}
	f.CreatedAt, f.BadTimestamp = parseOrKeep(in.CreatedAt)
	return nil
}

type fileJSON struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	MimeType   string  `json:"mime_type,omitempty"`
	Size       flexInt `json:"size"`
	UploadedAt string  `json:"uploaded_at,omitempty"`
	FolderID   int64   `json:"folder_id,omitempty"`
}

func (f File) MarshalJSON() ([]byte, error) {
	out := fileJSON{
		ID:       f.ID,
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     flexInt(f.Size),
		FolderID: f.FolderID,
	}
	if !f.UploadedAt.IsZero() {
		out.UploadedAt = f.UploadedAt.Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

func (f *File) UnmarshalJSON(b []byte) error {
	var in fileJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*f = File{
		ID:       in.ID,
		Name:     in.Name,
		MimeType: in.MimeType,
		Size:     int64(in.Size),
		FolderID: in.FolderID,
	}
	f.UploadedAt, f.BadTimestamp = parseOrKeep(in.UploadedAt)
	return nil
}
