package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/watchcrew/watchcrew-backend/pkg/config"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
	"github.com/watchcrew/watchcrew-backend/pkg/redis"
)

// Gateway is the catalog surface exposed to controllers.
type Gateway interface {
	Search(ctx context.Context, query string, page int) (*SearchResponse, error)
	Movie(ctx context.Context, id int64) (*MovieDetails, error)
	TV(ctx context.Context, id int64) (*TVDetails, error)
	TVSeason(ctx context.Context, id int64, season int) (*SeasonDetails, error)
	Person(ctx context.Context, id int64) (*PersonDetails, error)
	Trending(ctx context.Context, mediaType, window string, page int) (*SearchResponse, error)
}

// Cache is the subset of the Redis client the gateway uses.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(parts ...string) string
}

// ServiceParams groups dependencies for the catalog gateway.
type ServiceParams struct {
	Client *Client
	Cache  Cache
	Logger *logger.Logger
	Config config.CatalogConfig
}

type service struct {
	client *Client
	cache  Cache
	logg   *logger.Logger
	ttl    time.Duration
}

// NewService builds a read-through caching gateway over the catalog client.
func NewService(params ServiceParams) (Gateway, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog client is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog cache is required")
	}
	ttl := params.Config.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		client: params.Client,
		cache:  params.Cache,
		logg:   params.Logger,
		ttl:    ttl,
	}, nil
}

func (s *service) Search(ctx context.Context, query string, page int) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	if page < 0 {
		page = 0
	}

	key := s.cache.CatalogKey("search", strings.ToLower(query), fmt.Sprint(page))
	out := &SearchResponse{}
	err := s.cached(ctx, key, out, func() (any, error) {
		return s.client.SearchMulti(ctx, query, page)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Movie(ctx context.Context, id int64) (*MovieDetails, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movie id is required")
	}

	key := s.cache.CatalogKey("movie", fmt.Sprint(id))
	out := &MovieDetails{}
	if err := s.cached(ctx, key, out, func() (any, error) {
		return s.client.GetMovie(ctx, id)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) TV(ctx context.Context, id int64) (*TVDetails, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tv id is required")
	}

	key := s.cache.CatalogKey("tv", fmt.Sprint(id))
	out := &TVDetails{}
	if err := s.cached(ctx, key, out, func() (any, error) {
		return s.client.GetTV(ctx, id)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) TVSeason(ctx context.Context, id int64, season int) (*SeasonDetails, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tv id is required")
	}
	// season 0 is valid upstream (specials)
	if season < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "season must not be negative")
	}

	key := s.cache.CatalogKey("tv", fmt.Sprint(id), "season", fmt.Sprint(season))
	out := &SeasonDetails{}
	if err := s.cached(ctx, key, out, func() (any, error) {
		return s.client.GetTVSeason(ctx, id, season)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Person(ctx context.Context, id int64) (*PersonDetails, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id is required")
	}

	key := s.cache.CatalogKey("person", fmt.Sprint(id))
	out := &PersonDetails{}
	if err := s.cached(ctx, key, out, func() (any, error) {
		return s.client.GetPerson(ctx, id)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Trending(ctx context.Context, mediaType, window string, page int) (*SearchResponse, error) {
	switch mediaType {
	case "movie", "tv", "all":
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media type must be movie, tv, or all")
	}
	switch window {
	case "", "day", "week":
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window must be day or week")
	}

	key := s.cache.CatalogKey("trending", mediaType, window, fmt.Sprint(page))
	out := &SearchResponse{}
	if err := s.cached(ctx, key, out, func() (any, error) {
		return s.client.Trending(ctx, mediaType, window, page)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// cached fills out from Redis when possible, otherwise fetches upstream and
// stores the result. Cache failures degrade to the upstream call.
func (s *service) cached(ctx context.Context, key string, out any, fetch func() (any, error)) error {
	if raw, err := s.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal([]byte(raw), out); err == nil {
			return nil
		}
	} else if !redis.IsNil(err) && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache read failed")
	}

	fresh, err := fetch()
	if err != nil {
		if errors.Is(err, ErrUpstreamNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "title not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
	}

	payload, err := json.Marshal(fresh)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode catalog response")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode catalog response")
	}

	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache write failed")
	}
	return nil
}
