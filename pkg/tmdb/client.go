package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"srmdb/config"
)

const baseURL = "https://api.themoviedb.org/3"

// Client TMDB影视目录客户端
type Client struct {
	apiKey   string
	language string
	client   *http.Client
}

// NewClient 创建TMDB客户端
func NewClient(cfg config.TMDBConfig) *Client {
	language := cfg.Language
	if language == "" {
		language = "tr-TR"
	}
	return &Client{
		apiKey:   cfg.APIKey,
		language: language,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Item 目录条目（电影或剧集，字段按媒体类型二选一填充）
type Item struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`          // 电影
	Name         string  `json:"name,omitempty"`           // 剧集
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date,omitempty"`   // 电影
	FirstAirDate string  `json:"first_air_date,omitempty"` // 剧集
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
	GenreIDs     []int   `json:"genre_ids"`
}

// DisplayTitle 取电影标题或剧集名称
func (i Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

// Page 分页响应
type Page struct {
	Page         int    `json:"page"`
	Results      []Item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

// Popular 拉取热门榜单，mediaType为 movie 或 tv
func (c *Client) Popular(ctx context.Context, mediaType string, page int) (*Page, error) {
	if mediaType != "movie" && mediaType != "tv" {
		return nil, fmt.Errorf("不支持的媒体类型: %s", mediaType)
	}
	if page < 1 {
		page = 1
	}
	return c.getPage(ctx, fmt.Sprintf("/%s/popular", mediaType), url.Values{
		"page": {strconv.Itoa(page)},
	})
}

// Similar 拉取与指定电影相似的作品
func (c *Client) Similar(ctx context.Context, movieID int) (*Page, error) {
	return c.getPage(ctx, fmt.Sprintf("/movie/%d/similar", movieID), nil)
}

func (c *Client) getPage(ctx context.Context, endpoint string, params url.Values) (*Page, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("TMDB API密钥未配置")
	}

	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB返回状态码 %d", resp.StatusCode)
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}
