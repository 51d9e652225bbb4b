package covers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"
)

type openLibraryResponse struct {
	Docs []struct {
		CoverID int64    `json:"cover_i"`
		ISBN    []string `json:"isbn"`
	} `json:"docs"`
}

func (f *Finder) searchOpenLibrary(ctx context.Context, q Query) (string, error) {
	term := q.Title
	if q.Creator != "" {
		term += " " + q.Creator
	}
	params := url.Values{}
	params.Set("q", term)
	params.Set("limit", "1")

	resp, err := f.get(ctx, f.cfg.OpenLibraryBaseURL+"/search.json", params)
	if err != nil {
		return "", fmt.Errorf("openlibrary search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openlibrary search returned %d", resp.StatusCode)
	}

	var payload openLibraryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode openlibrary response: %w", err)
	}
	if len(payload.Docs) == 0 {
		return "", nil
	}
	doc := payload.Docs[0]
	if doc.CoverID > 0 {
		return openLibraryCoverBase + "/id/" + strconv.FormatInt(doc.CoverID, 10) + "-L.jpg", nil
	}
	if len(doc.ISBN) > 0 && doc.ISBN[0] != "" {
		return openLibraryCoverBase + "/isbn/" + url.PathEscape(doc.ISBN[0]) + "-L.jpg", nil
	}
	return "", nil
}
