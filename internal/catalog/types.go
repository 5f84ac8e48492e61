package catalog

// Genre is one catalog genre attached to a title.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SearchResult is one row of a multi-search response. Movies carry Title and
// ReleaseDate, TV carries Name and FirstAirDate, people carry Name and
// ProfilePath.
type SearchResult struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	ProfilePath  string  `json:"profile_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	GenreIDs     []int64 `json:"genre_ids,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
}

// SearchResponse is a paged multi-search or trending result set.
type SearchResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

// MovieDetails is the detail payload for a movie.
type MovieDetails struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Tagline      string  `json:"tagline,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	Runtime      int     `json:"runtime,omitempty"`
	Status       string  `json:"status,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	VoteCount    int64   `json:"vote_count,omitempty"`
}

// TVDetails is the detail payload for a TV series.
type TVDetails struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	LastAirDate      string  `json:"last_air_date,omitempty"`
	NumberOfSeasons  int     `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int     `json:"number_of_episodes,omitempty"`
	Status           string  `json:"status,omitempty"`
	Genres           []Genre `json:"genres,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
}

// SeasonEpisode is one episode row within a season payload.
type SeasonEpisode struct {
	ID            int64   `json:"id"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview,omitempty"`
	AirDate       string  `json:"air_date,omitempty"`
	Runtime       int     `json:"runtime,omitempty"`
	StillPath     string  `json:"still_path,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
}

// SeasonDetails is the detail payload for one season of a TV series.
type SeasonDetails struct {
	ID           int64           `json:"id"`
	SeasonNumber int             `json:"season_number"`
	Name         string          `json:"name"`
	Overview     string          `json:"overview,omitempty"`
	PosterPath   string          `json:"poster_path,omitempty"`
	AirDate      string          `json:"air_date,omitempty"`
	Episodes     []SeasonEpisode `json:"episodes,omitempty"`
}

// PersonDetails is the detail payload for a person.
type PersonDetails struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Biography          string `json:"biography,omitempty"`
	ProfilePath        string `json:"profile_path,omitempty"`
	KnownForDepartment string `json:"known_for_department,omitempty"`
	Birthday           string `json:"birthday,omitempty"`
	PlaceOfBirth       string `json:"place_of_birth,omitempty"`
}
