package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lkcrawl/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

/*
	company search hit (after reshaping):
	{"urn_id": "1441", "name": "Google", "headline": "Software Development", "subline": "29M followers"}

	people search hit (after reshaping):
	{"urn_id": "ACoAAA8BYqEBCGLg", "distance": "DISTANCE_2", "public_id": "jane-doe"}

	profile (after reshaping):
	{"firstName": "Jane", "lastName": "Doe", ..., "education": [...], "experience": [...]}
*/

const (
	baseURL = "https://www.linkedin.com"
	apiPath = "/voyager/api"

	peoplePageSize   = 49
	maxSearchResults = 1000

	userAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	authUserAgent = "LinkedIn/8.8.1 CFNetwork/711.3.18 Darwin/14.0.0"

	cookieSession = "JSESSIONID"
	cookieAuth    = "li_at"

	// search/blended only answers in the normalized envelope,
	// {"data": {"elements": [...]}, "included": [...]}.
	acceptNormalized = "application/vnd.linkedin.normalized+json+2.1"
	acceptJSON       = "application/json"
	searchHitsPath   = "data.elements.#.elements|@flatten"
)

var (
	// ErrChallenge is returned when the login endpoint asks for extra
	// verification (captcha, pin) instead of accepting the credentials.
	ErrChallenge   = errors.New("linkedin login challenge")
	ErrNotLoggedIn = errors.New("linkedin session has no JSESSIONID")
)

type Client struct {
	http    *resty.Client
	jar     http.CookieJar
	base    *url.URL
	limiter *rate.Limiter
	logger  *zap.Logger
}

func New(logger *zap.Logger, requestsPerSecond float64) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	c := &Client{
		jar:     jar,
		base:    base,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("linkedin"),
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetTimeout(30*time.Second).
		SetHeader("user-agent", userAgent).
		SetHeader("accept-language", "en-AU,en-GB;q=0.9,en-US;q=0.8,en;q=0.7").
		SetHeader("x-li-lang", "en_US").
		SetHeader("x-restli-protocol-version", "2.0.0")

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return err
		}
		if token := c.csrfToken(); token != "" {
			req.SetHeader("csrf-token", token)
		}
		return nil
	})

	return c, nil
}

// Connect builds a client and authenticates it with whatever the
// configuration offers. Session cookies win over credentials.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Client, error) {
	c, err := New(logger, cfg.RequestsPerSecond)
	if err != nil {
		return nil, err
	}

	if cfg.UseCookies() {
		c.logger.Info("using session cookies")
		c.UseCookies(cfg.LinkedinLiAt, cfg.LinkedinJSessionID)
		return c, nil
	}

	c.logger.Info("using username and password")
	c.logger.Warn("prefer session cookies to avoid repeated logins")
	if err := c.Login(ctx, cfg.LinkedinUsername, cfg.LinkedinPassword); err != nil {
		return nil, err
	}
	return c, nil
}

// UseDefaultClient routes requests through http.DefaultClient's transport.
func (c *Client) UseDefaultClient() {
	c.http.SetTransport(http.DefaultClient.Transport)
}

func (c *Client) UseCookies(liAt, jsessionID string) {
	c.jar.SetCookies(c.base, []*http.Cookie{
		{Name: "liap", Value: "true", Path: "/"},
		{Name: cookieAuth, Value: liAt, Path: "/"},
		{Name: cookieSession, Value: strings.Trim(jsessionID, `"`), Path: "/"},
	})
}

// Cookies returns the li_at and JSESSIONID values of the current session.
func (c *Client) Cookies() (liAt, jsessionID string) {
	for _, cookie := range c.jar.Cookies(c.base) {
		switch cookie.Name {
		case cookieAuth:
			liAt = cookie.Value
		case cookieSession:
			jsessionID = strings.Trim(cookie.Value, `"`)
		}
	}
	return liAt, jsessionID
}

func (c *Client) csrfToken() string {
	_, token := c.Cookies()
	return token
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("user-agent", authUserAgent).
		SetHeader("x-li-user-agent", "LIAuthLibrary:3.2.4 com.linkedin.LinkedIn:8.8.1 iPhone:8.3").
		Get("/uas/authenticate")
	if err != nil {
		return fmt.Errorf("linkedin login: %w", err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("linkedin login: http %d: %s", res.StatusCode(), res.String())
	}

	token := c.csrfToken()
	if token == "" {
		return fmt.Errorf("linkedin login: %w", ErrNotLoggedIn)
	}

	res, err = c.http.R().
		SetContext(ctx).
		SetHeader("user-agent", authUserAgent).
		SetHeader("x-li-user-agent", "LIAuthLibrary:3.2.4 com.linkedin.LinkedIn:8.8.1 iPhone:8.3").
		SetFormData(map[string]string{
			"session_key":      username,
			"session_password": password,
			"JSESSIONID":       token,
		}).
		Post("/uas/authenticate")
	if err != nil {
		return fmt.Errorf("linkedin login: %w", err)
	}

	result := gjson.GetBytes(res.Body(), "login_result")
	if !result.Exists() && !res.IsSuccess() {
		return fmt.Errorf("linkedin login: http %d: %s", res.StatusCode(), res.String())
	}
	if result.String() != "PASS" {
		return fmt.Errorf("%w: %s", ErrChallenge, result.String())
	}

	c.logger.Debug("logged in", zap.String("username", username))
	return nil
}

func (c *Client) get(ctx context.Context, path, accept string, query map[string]string) (gjson.Result, error) {
	c.logger.Debug("request", zap.String("path", path), zap.String("accept", accept), zap.Any("query", query))

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeader("accept", accept).
		Get(apiPath + path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("linkedin %s: %w", path, err)
	}
	if !res.IsSuccess() {
		return gjson.Result{}, fmt.Errorf("linkedin http %d on %s: %s", res.StatusCode(), path, res.String())
	}
	if !gjson.ValidBytes(res.Body()) {
		return gjson.Result{}, fmt.Errorf("linkedin %s: invalid json body", path)
	}

	return gjson.ParseBytes(res.Body()), nil
}

// SearchCompanies returns up to limit hits shaped as
// {urn_id, name, headline, subline}, best match first.
func (c *Client) SearchCompanies(ctx context.Context, query string, limit int) ([]gjson.Result, error) {
	res, err := c.get(ctx, "/search/blended", acceptNormalized, map[string]string{
		"keywords": query,
		"origin":   "GLOBAL_SEARCH_HEADER",
		"q":        "all",
		"filters":  "List(resultType->COMPANIES)",
		"start":    "0",
		"count":    strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}

	var hits []gjson.Result
	for _, item := range res.Get(searchHitsPath).Array() {
		if len(hits) == limit {
			break
		}
		hit, err := reshape(map[string]any{
			"urn_id":   urnSuffix(item.Get("targetUrn").String()),
			"name":     item.Get("title.text").String(),
			"headline": item.Get("headline.text").String(),
			"subline":  item.Get("subline.text").String(),
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// GetCompanyDetail fetches the full organization record for a company id
// returned by SearchCompanies.
func (c *Client) GetCompanyDetail(ctx context.Context, id string) (gjson.Result, error) {
	res, err := c.get(ctx, "/organization/companies", acceptJSON, map[string]string{
		"decorationId":  "com.linkedin.voyager.deco.organization.web.WebFullCompanyMain-12",
		"q":             "universalName",
		"universalName": id,
	})
	if err != nil {
		return gjson.Result{}, err
	}

	company := res.Get("elements.0")
	if !company.Exists() {
		return gjson.Result{}, fmt.Errorf("linkedin company %s: not found", id)
	}
	return company, nil
}

// SearchPeople lists members currently working at any of companyIDs, paging
// through the search until it runs dry. Out-of-network members are dropped
// when excludePrivate is set since their profiles cannot be read.
func (c *Client) SearchPeople(ctx context.Context, companyIDs []string, excludePrivate bool) ([]gjson.Result, error) {
	filters := fmt.Sprintf("List(currentCompany->%s,resultType->PEOPLE)", strings.Join(companyIDs, "|"))

	var people []gjson.Result
	for start := 0; start < maxSearchResults; start += peoplePageSize {
		res, err := c.get(ctx, "/search/blended", acceptNormalized, map[string]string{
			"count":        strconv.Itoa(peoplePageSize),
			"filters":      filters,
			"origin":       "FACETED_SEARCH",
			"q":            "all",
			"queryContext": "List(spellCorrectionEnabled->true,relatedSearchesEnabled->true)",
			"start":        strconv.Itoa(start),
		})
		if err != nil {
			return nil, err
		}

		page := res.Get(searchHitsPath).Array()
		for _, item := range page {
			distance := item.Get("memberDistance.value").String()
			if excludePrivate && distance == "OUT_OF_NETWORK" {
				continue
			}
			person, err := reshape(map[string]any{
				"urn_id":    urnSuffix(item.Get("targetUrn").String()),
				"distance":  distance,
				"public_id": item.Get("publicIdentifier").String(),
			})
			if err != nil {
				return nil, err
			}
			people = append(people, person)
		}

		if len(people) >= maxSearchResults {
			people = people[:maxSearchResults]
			break
		}
		if len(page) < peoplePageSize {
			break
		}
	}

	c.logger.Debug("people search done", zap.Strings("companies", companyIDs), zap.Int("count", len(people)))
	return people, nil
}

// GetProfile returns the member's profile with its education and position
// history attached as "education" and "experience".
func (c *Client) GetProfile(ctx context.Context, id string) (gjson.Result, error) {
	res, err := c.get(ctx, "/identity/profiles/"+url.PathEscape(id)+"/profileView", acceptJSON, nil)
	if err != nil {
		return gjson.Result{}, err
	}

	profile := res.Get("profile")
	if !profile.IsObject() {
		return gjson.Result{}, fmt.Errorf("linkedin profile %s: missing profile object", id)
	}

	raw := profile.Raw
	for key, path := range map[string]string{
		"education":  "educationView.elements",
		"experience": "positionView.elements",
	} {
		list := res.Get(path)
		if !list.IsArray() {
			continue
		}
		if raw, err = sjson.SetRaw(raw, key, list.Raw); err != nil {
			return gjson.Result{}, fmt.Errorf("linkedin profile %s: %w", id, err)
		}
	}

	return gjson.Parse(raw), nil
}

func reshape(fields map[string]any) (gjson.Result, error) {
	doc := "{}"
	for key, value := range fields {
		var err error
		if doc, err = sjson.Set(doc, key, value); err != nil {
			return gjson.Result{}, err
		}
	}
	return gjson.Parse(doc), nil
}

func urnSuffix(urn string) string {
	if idx := strings.LastIndex(urn, ":"); idx != -1 {
		return urn[idx+1:]
	}
	return urn
}
