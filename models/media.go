package models

// MediaType discriminates the two media kinds the catalog serves.
// Search responses from the catalog API also contain "person" entries;
// those are filtered out before results reach this type.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether t is one of the two supported media kinds.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// Genre is a catalog genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Credit is a cast or crew member attached to a title.
type Credit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	Job         string `json:"job,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Video is a related video (trailer, teaser, clip) for a title.
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Credits groups cast and crew for a title.
type Credits struct {
	Cast []Credit `json:"cast"`
	Crew []Credit `json:"crew"`
}

// MediaItem is a single catalog entry as it appears in collection and
// search responses. MediaType is the explicit discriminator; Title is
// populated for movies, Name for TV shows.
type MediaItem struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	Overview     string    `json:"overview"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	VoteAverage  float64   `json:"vote_average"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	GenreIDs     []int64   `json:"genre_ids,omitempty"`
}

// MediaList is a paginated collection response from the catalog API.
type MediaList struct {
	Page         int         `json:"page"`
	Results      []MediaItem `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

// Movie is a full movie details payload including appended relations.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	Runtime      int     `json:"runtime,omitempty"`
	Status       string  `json:"status,omitempty"`
	Tagline      string  `json:"tagline,omitempty"`
	IMDBID       string  `json:"imdb_id,omitempty"`
	Budget       int64   `json:"budget,omitempty"`
	Revenue      int64   `json:"revenue,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`

	Videos          *VideoList `json:"videos,omitempty"`
	Credits         *Credits   `json:"credits,omitempty"`
	Similar         *MediaList `json:"similar,omitempty"`
	Recommendations *MediaList `json:"recommendations,omitempty"`
}

// VideoList wraps the appended videos relation.
type VideoList struct {
	Results []Video `json:"results"`
}

// Episode is a single episode within a season.
type Episode struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	StillPath     string `json:"still_path,omitempty"`
	AirDate       string `json:"air_date,omitempty"`
	Runtime       int    `json:"runtime,omitempty"`
}

// Season is a TV season, with episodes populated only by the season
// details endpoint.
type Season struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"season_number"`
	EpisodeCount int       `json:"episode_count"`
	PosterPath   string    `json:"poster_path,omitempty"`
	Overview     string    `json:"overview"`
	AirDate      string    `json:"air_date,omitempty"`
	Episodes     []Episode `json:"episodes,omitempty"`
}

// TVShow is a full TV show details payload including appended relations.
type TVShow struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	LastAirDate      string  `json:"last_air_date,omitempty"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	Status           string  `json:"status,omitempty"`
	EpisodeRunTime   []int   `json:"episode_run_time,omitempty"`
	Genres           []Genre `json:"genres,omitempty"`
	Seasons          []Season `json:"seasons,omitempty"`

	Videos          *VideoList `json:"videos,omitempty"`
	Credits         *Credits   `json:"credits,omitempty"`
	Similar         *MediaList `json:"similar,omitempty"`
	Recommendations *MediaList `json:"recommendations,omitempty"`
}
