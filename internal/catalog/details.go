package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// AppendToResponse lists the sub-resources fetched alongside a detail record
const AppendToResponse = "credits,videos,similar,watch/providers,images,reviews"

const (
	maxCast     = 12
	maxVideos   = 3
	maxSimilar  = 6
	maxReviews  = 5
	maxImages   = 8
	watchRegion = "US"
)

// Genre is a named genre tag
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one billed credit
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

// Video is a trailer or teaser hosted on a video site
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Review is a user review from the metadata service
type Review struct {
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
}

// WatchProvider is a streaming/rent/buy provider
type WatchProvider struct {
	ProviderID   int     `json:"provider_id"`
	ProviderName string  `json:"provider_name"`
	LogoPath     *string `json:"logo_path"`
}

// WatchOptions groups the providers for one region
type WatchOptions struct {
	Link     string          `json:"link"`
	Flatrate []WatchProvider `json:"flatrate"`
	Rent     []WatchProvider `json:"rent"`
	Buy      []WatchProvider `json:"buy"`
}

// Details is the full record of one title, trimmed for display
type Details struct {
	CatalogItem
	BackdropPath *string       `json:"backdropPath"`
	Tagline      string        `json:"tagline"`
	Status       string        `json:"status"`
	Runtime      int           `json:"runtime"`
	Genres       []Genre       `json:"genres"`
	Budget       int64         `json:"budget,omitempty"`
	Revenue      int64         `json:"revenue,omitempty"`
	Seasons      int           `json:"seasons,omitempty"`
	Episodes     int           `json:"episodes,omitempty"`
	LastAirDate  string        `json:"lastAirDate,omitempty"`
	Networks     []string      `json:"networks,omitempty"`
	Cast         []CastMember  `json:"cast"`
	Videos       []Video       `json:"videos"`
	Similar      []CatalogItem `json:"similar"`
	Reviews      []Review      `json:"reviews"`
	Backdrops    []string      `json:"backdrops"`
	Posters      []string      `json:"posters"`
	Watch        *WatchOptions `json:"watch,omitempty"`
}

type rawImage struct {
	FilePath string `json:"file_path"`
}

type rawDetails struct {
	rawRecord
	BackdropPath   *string `json:"backdrop_path"`
	Tagline        string  `json:"tagline"`
	Status         string  `json:"status"`
	Runtime        int     `json:"runtime"`
	EpisodeRunTime []int   `json:"episode_run_time"`
	Genres         []Genre `json:"genres"`
	Budget         int64   `json:"budget"`
	Revenue        int64   `json:"revenue"`
	Seasons        int     `json:"number_of_seasons"`
	Episodes       int     `json:"number_of_episodes"`
	LastAirDate    string  `json:"last_air_date"`
	Networks       []struct {
		Name string `json:"name"`
	} `json:"networks"`
	Credits struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
	Videos struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Similar struct {
		Results []rawRecord `json:"results"`
	} `json:"similar"`
	Reviews struct {
		Results []Review `json:"results"`
	} `json:"reviews"`
	Images struct {
		Backdrops []rawImage `json:"backdrops"`
		Posters   []rawImage `json:"posters"`
	} `json:"images"`
	WatchProviders struct {
		Results map[string]WatchOptions `json:"results"`
	} `json:"watch/providers"`
}

// Details fetches one title with all sub-resources in a single combined request
func (c *Client) Details(ctx context.Context, kind Kind, id int) (*Details, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid kind %q", kind)
	}
	if id < 1 {
		return nil, fmt.Errorf("invalid id %d", id)
	}

	endpoint := kind.upstream() + "/" + strconv.Itoa(id)
	body, err := c.get(ctx, endpoint, map[string]string{
		"language":           "en-US",
		"append_to_response": AppendToResponse,
	})
	if err != nil {
		return nil, err
	}

	var raw rawDetails
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}

	return raw.normalize(kind), nil
}

func (r rawDetails) normalize(kind Kind) *Details {
	d := &Details{
		CatalogItem:  r.rawRecord.normalize(kind),
		BackdropPath: r.BackdropPath,
		Tagline:      r.Tagline,
		Status:       r.Status,
		Runtime:      r.Runtime,
		Genres:       r.Genres,
		Budget:       r.Budget,
		Revenue:      r.Revenue,
		Seasons:      r.Seasons,
		Episodes:     r.Episodes,
		LastAirDate:  r.LastAirDate,
		Cast:         head(r.Credits.Cast, maxCast),
		Reviews:      head(r.Reviews.Results, maxReviews),
	}
	if d.Runtime == 0 && len(r.EpisodeRunTime) > 0 {
		d.Runtime = r.EpisodeRunTime[0]
	}

	for _, n := range r.Networks {
		d.Networks = append(d.Networks, n.Name)
	}

	for _, v := range r.Videos.Results {
		if v.Type != "Trailer" && v.Type != "Teaser" {
			continue
		}
		d.Videos = append(d.Videos, v)
		if len(d.Videos) == maxVideos {
			break
		}
	}

	for _, s := range head(r.Similar.Results, maxSimilar) {
		d.Similar = append(d.Similar, s.normalize(kind))
	}

	for _, img := range head(r.Images.Backdrops, maxImages) {
		d.Backdrops = append(d.Backdrops, img.FilePath)
	}
	for _, img := range head(r.Images.Posters, maxImages) {
		d.Posters = append(d.Posters, img.FilePath)
	}

	if opts, ok := r.WatchProviders.Results[watchRegion]; ok {
		d.Watch = &opts
	}

	return d
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
