package covers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"

	"varologs/internal/media"
)

type tmdbResponse struct {
	Results []struct {
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

func (f *Finder) searchTMDB(ctx context.Context, q Query) (string, error) {
	kind, yearParam := "movie", "year"
	if q.Type == media.Series || q.Type == media.Anime {
		kind, yearParam = "tv", "first_air_date_year"
	}
	params := url.Values{}
	params.Set("query", q.Title)
	params.Set("api_key", f.cfg.TMDBAPIKey)
	if f.cfg.TMDBLanguage != "" {
		params.Set("language", f.cfg.TMDBLanguage)
	}
	if q.Year != nil && *q.Year > 0 {
		params.Set(yearParam, strconv.Itoa(*q.Year))
	}

	resp, err := f.get(ctx, f.cfg.TMDBBaseURL+"/search/"+kind, params)
	if err != nil {
		return "", fmt.Errorf("tmdb search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tmdb search returned %d", resp.StatusCode)
	}

	var payload tmdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode tmdb response: %w", err)
	}
	for _, r := range payload.Results {
		if r.PosterPath != "" {
			return tmdbImageBase + r.PosterPath, nil
		}
	}
	return "", nil
}
