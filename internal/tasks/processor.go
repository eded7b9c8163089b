package tasks

import (
	"context"
	"fmt"

	"lkcrawl/internal/stocks"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ProfileAPI is the part of the professional-network client the crawl needs.
type ProfileAPI interface {
	SearchCompanies(ctx context.Context, query string, limit int) ([]gjson.Result, error)
	GetCompanyDetail(ctx context.Context, id string) (gjson.Result, error)
	SearchPeople(ctx context.Context, companyIDs []string, excludePrivate bool) ([]gjson.Result, error)
	GetProfile(ctx context.Context, id string) (gjson.Result, error)
}

// Gateway receives the rows of one stock entry and persists them on Commit.
type Gateway interface {
	Stage(row any)
	Commit(ctx context.Context) error
	Discard()
	CompanyExists(ctx context.Context, urnID int64) (bool, error)
}

type Report struct {
	Seen int

	SkippedEmptyQuery int
	SkippedNoMatch    int
	SkippedKnown      int

	Companies  int
	Locations  int
	People     int
	Education  int
	Experience int
}

func (r Report) Skipped() int {
	return r.SkippedEmptyQuery + r.SkippedNoMatch + r.SkippedKnown
}

func (r *Report) add(o Report) {
	r.Companies += o.Companies
	r.Locations += o.Locations
	r.People += o.People
	r.Education += o.Education
	r.Experience += o.Experience
}

// TaskProcessor holds dependencies for the crawl
type TaskProcessor struct {
	api         ProfileAPI
	store       Gateway
	logger      *zap.Logger
	searchLimit int
	report      Report
}

func NewTaskProcessor(api ProfileAPI, store Gateway, logger *zap.Logger, searchLimit int) *TaskProcessor {
	return &TaskProcessor{
		api:         api,
		store:       store,
		logger:      logger.Named("crawler"),
		searchLimit: searchLimit,
	}
}

func (p *TaskProcessor) Report() Report {
	return p.report
}

// Run handles list in order and stops at the first fatal error. The report
// covers every entry handled before that.
func (p *TaskProcessor) Run(ctx context.Context, list []stocks.Stock) (Report, error) {
	for i, stock := range list {
		if err := ctx.Err(); err != nil {
			return p.report, err
		}
		if err := p.HandleStock(ctx, stock); err != nil {
			return p.report, fmt.Errorf("stock %d (%s): %w", i, stock.Symbol, err)
		}
	}

	p.logger.Info("crawl finished",
		zap.Int("seen", p.report.Seen),
		zap.Int("skipped", p.report.Skipped()),
		zap.Int("companies", p.report.Companies),
		zap.Int("people", p.report.People),
	)
	return p.report, nil
}

// HandleStock resolves one listing to a company and stores the company, its
// locations and its current staff in a single commit. Entries without a
// usable match are skipped and return nil.
func (p *TaskProcessor) HandleStock(ctx context.Context, stock stocks.Stock) error {
	p.report.Seen++
	log := p.logger.With(zap.String("symbol", stock.Symbol))
	log.Info("handling stock", zap.String("name", stock.Name))

	query := stocks.NormalizeName(stock.Name)
	if query == "" {
		log.Warn("name normalizes to an empty query", zap.String("name", stock.Name))
		p.report.SkippedEmptyQuery++
		return nil
	}

	hits, err := p.api.SearchCompanies(ctx, query, p.searchLimit)
	if err != nil {
		return fmt.Errorf("failed to search companies: %w", err)
	}
	if len(hits) == 0 {
		log.Error("could not find company", zap.String("query", query))
		p.report.SkippedNoMatch++
		return nil
	}

	hit := hits[0]
	log.Info("found company",
		zap.String("query", query),
		zap.String("name", hit.Get("name").String()),
		zap.String("headline", hit.Get("headline").String()),
		zap.String("subline", hit.Get("subline").String()),
	)

	counts, err := p.stageCompany(ctx, log, stock, hit.Get("urn_id").String())
	if err != nil {
		p.store.Discard()
		return err
	}
	if counts == nil {
		p.report.SkippedKnown++
		return nil
	}

	if err := p.store.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", stock.Symbol, err)
	}
	p.report.add(*counts)

	log.Info("stored company",
		zap.Int("locations", counts.Locations),
		zap.Int("people", counts.People),
	)
	return nil
}

// stageCompany returns nil counts when the company is already stored.
func (p *TaskProcessor) stageCompany(ctx context.Context, log *zap.Logger, stock stocks.Stock, urnID string) (*Report, error) {
	detail, err := p.api.GetCompanyDetail(ctx, urnID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company %s: %w", urnID, err)
	}

	company, err := MapCompany(urnID, stock.Symbol, detail)
	if err != nil {
		return nil, fmt.Errorf("company %s: %w", urnID, err)
	}

	known, err := p.store.CompanyExists(ctx, company.URNID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up company %d: %w", company.URNID, err)
	}
	if known {
		log.Info("company already stored", zap.Int64("urn_id", company.URNID))
		return nil, nil
	}

	counts := &Report{Companies: 1}
	p.store.Stage(company)

	for i, loc := range detail.Get("confirmedLocations").Array() {
		row, err := MapLocation(company.URNID, loc)
		if err != nil {
			return nil, fmt.Errorf("company %s location %d: %w", urnID, i, err)
		}
		p.store.Stage(row)
		counts.Locations++
	}

	companyIDs := []string{urnID}
	detail.Get("affiliatedCompaniesResolutionResults").ForEach(func(_, affiliate gjson.Result) bool {
		companyIDs = append(companyIDs, URNSuffix(affiliate.Get("entityUrn").String()))
		return true
	})
	log.Debug("searching people", zap.Strings("companies", companyIDs))

	people, err := p.api.SearchPeople(ctx, companyIDs, true)
	if err != nil {
		return nil, fmt.Errorf("failed to search people: %w", err)
	}
	log.Info("found people", zap.Int("count", len(people)))

	for _, person := range people {
		if err := p.stagePerson(ctx, log, person, counts); err != nil {
			return nil, err
		}
	}

	return counts, nil
}

func (p *TaskProcessor) stagePerson(ctx context.Context, log *zap.Logger, hit gjson.Result, counts *Report) error {
	id, err := requiredString(hit, "urn_id")
	if err != nil {
		return fmt.Errorf("people search hit: %w", err)
	}

	profile, err := p.api.GetProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get profile %s: %w", id, err)
	}

	person, err := MapPerson(profile)
	if err != nil {
		return fmt.Errorf("profile %s: %w", id, err)
	}

	for i, item := range profile.Get("education").Array() {
		row, err := MapEducation(item)
		if err != nil {
			return fmt.Errorf("profile %s education %d: %w", id, i, err)
		}
		warnInverted(log, item, "education", id, i)
		person.Education = append(person.Education, *row)
	}

	for i, item := range profile.Get("experience").Array() {
		row, err := MapExperience(item)
		if err != nil {
			return fmt.Errorf("profile %s experience %d: %w", id, i, err)
		}
		warnInverted(log, item, "experience", id, i)
		person.Experience = append(person.Experience, *row)
	}

	p.store.Stage(person)
	counts.People++
	counts.Education += len(person.Education)
	counts.Experience += len(person.Experience)
	return nil
}

func warnInverted(log *zap.Logger, item gjson.Result, kind, profileID string, index int) {
	period := ReadPeriod(item)
	if !period.Inverted {
		return
	}
	log.Warn("end year before start year, dropping end",
		zap.String("kind", kind),
		zap.String("profile", profileID),
		zap.Int("index", index),
		zap.Int("start", *period.Start),
		zap.Int("end", *period.End),
	)
}
