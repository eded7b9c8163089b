package tasks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lkcrawl/internal/models"

	"github.com/lib/pq"
	"github.com/tidwall/gjson"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field type")
)

// Period is the year range of an education or experience entry.
type Period struct {
	Start *int
	End   *int
	// Inverted is set when the end year precedes the start year.
	Inverted bool
}

func ReadPeriod(item gjson.Result) Period {
	p := Period{
		Start: optionalYear(item, "timePeriod.startDate.year"),
		End:   optionalYear(item, "timePeriod.endDate.year"),
	}
	p.Inverted = p.Start != nil && p.End != nil && *p.End < *p.Start
	return p
}

// MapCompany builds the company row for the search hit urnID. symbol is the
// ticker the company was looked up by.
func MapCompany(urnID, symbol string, detail gjson.Result) (*models.Company, error) {
	id, err := strconv.ParseInt(urnID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: urn_id %q", ErrInvalidField, urnID)
	}

	url, err := requiredString(detail, "url")
	if err != nil {
		return nil, err
	}
	staff, err := requiredInt(detail, "staffCount")
	if err != nil {
		return nil, err
	}
	name, err := requiredString(detail, "universalName")
	if err != nil {
		return nil, err
	}

	specialities := detail.Get("specialities")
	if !present(specialities) {
		return nil, fmt.Errorf("%w: specialities", ErrMissingField)
	}
	if !specialities.IsArray() {
		return nil, fmt.Errorf("%w: specialities", ErrInvalidField)
	}
	list := pq.StringArray{}
	for _, s := range specialities.Array() {
		list = append(list, s.String())
	}

	return &models.Company{
		URNID:        id,
		URL:          url,
		StaffCount:   int(staff),
		Specialities: list,
		Name:         name,
		Symbol:       symbol,
	}, nil
}

func MapLocation(companyURNID int64, loc gjson.Result) (*models.Location, error) {
	country, err := requiredString(loc, "country")
	if err != nil {
		return nil, err
	}
	city, err := requiredString(loc, "city")
	if err != nil {
		return nil, err
	}
	postalCode, err := requiredString(loc, "postalCode")
	if err != nil {
		return nil, err
	}
	hq, err := requiredBool(loc, "headquarter")
	if err != nil {
		return nil, err
	}

	return &models.Location{
		CompanyURNID:   companyURNID,
		Country:        country,
		GeographicArea: optionalString(loc, "geographicArea"),
		City:           city,
		PostalCode:     postalCode,
		Line:           optionalString(loc, "line1"),
		Headquarter:    hq,
	}, nil
}

// MapPerson maps the profile itself. Education and experience entries are
// mapped separately with MapEducation and MapExperience.
func MapPerson(profile gjson.Result) (*models.People, error) {
	first, err := requiredString(profile, "firstName")
	if err != nil {
		return nil, err
	}
	last, err := requiredString(profile, "lastName")
	if err != nil {
		return nil, err
	}
	student, err := requiredBool(profile, "student")
	if err != nil {
		return nil, err
	}
	country, err := requiredString(profile, "geoCountryName")
	if err != nil {
		return nil, err
	}

	return &models.People{
		IndustryName: optionalString(profile, "industryName"),
		FirstName:    first,
		LastName:     last,
		Student:      student,
		Country:      country,
		City:         optionalString(profile, "geoLocationName"),
	}, nil
}

// MapEducation drops the end year of an inverted period.
func MapEducation(edu gjson.Result) (*models.Education, error) {
	school, err := requiredString(edu, "schoolName")
	if err != nil {
		return nil, err
	}

	period := ReadPeriod(edu)
	if period.Inverted {
		period.End = nil
	}

	return &models.Education{
		Degree:     optionalString(edu, "degree"),
		Activities: optionalString(edu, "activities"),
		Name:       school,
		Field:      optionalString(edu, "fieldOfStudy"),
		Start:      period.Start,
		End:        period.End,
	}, nil
}

// MapExperience drops the end year of an inverted period.
func MapExperience(exp gjson.Result) (*models.Experience, error) {
	company, err := requiredString(exp, "companyName")
	if err != nil {
		return nil, err
	}
	title, err := requiredString(exp, "title")
	if err != nil {
		return nil, err
	}

	var companyURN *string
	if urn := optionalString(exp, "companyUrn"); urn != nil {
		suffix := URNSuffix(*urn)
		companyURN = &suffix
	}

	period := ReadPeriod(exp)
	if period.Inverted {
		period.End = nil
	}

	return &models.Experience{
		Location:    optionalString(exp, "geoLocationName"),
		CompanyName: company,
		CompanyURN:  companyURN,
		Title:       title,
		Start:       period.Start,
		End:         period.End,
	}, nil
}

// URNSuffix returns the id part of a URN ("urn:li:company:42" -> "42").
func URNSuffix(urn string) string {
	if idx := strings.LastIndex(urn, ":"); idx != -1 {
		return urn[idx+1:]
	}
	return urn
}

func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

func requiredString(obj gjson.Result, path string) (string, error) {
	v := obj.Get(path)
	if !present(v) {
		return "", fmt.Errorf("%w: %s", ErrMissingField, path)
	}
	if v.Type != gjson.String && v.Type != gjson.Number {
		return "", fmt.Errorf("%w: %s is %s", ErrInvalidField, path, v.Type)
	}
	return v.String(), nil
}

func requiredInt(obj gjson.Result, path string) (int64, error) {
	v := obj.Get(path)
	if !present(v) {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, path)
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s is %s", ErrInvalidField, path, v.Type)
	}
	return v.Int(), nil
}

func requiredBool(obj gjson.Result, path string) (bool, error) {
	v := obj.Get(path)
	if !present(v) {
		return false, fmt.Errorf("%w: %s", ErrMissingField, path)
	}
	if !v.IsBool() {
		return false, fmt.Errorf("%w: %s is %s", ErrInvalidField, path, v.Type)
	}
	return v.Bool(), nil
}

func optionalString(obj gjson.Result, path string) *string {
	v := obj.Get(path)
	if !present(v) {
		return nil
	}
	s := v.String()
	return &s
}

func optionalYear(obj gjson.Result, path string) *int {
	v := obj.Get(path)
	if v.Type != gjson.Number {
		return nil
	}
	year := int(v.Int())
	return &year
}
