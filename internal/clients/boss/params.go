package boss

import (
	"fmt"
	"github.com/pkg/errors"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidParameters = errors.New("invalid search parameters")

// NationwideCity is the city code the job board uses for a country-wide search.
const NationwideCity = "100010000"

type SearchParameters struct {
	Query string
	City  string
	Page  int
}

func (s SearchParameters) Validate() error {

	if strings.TrimSpace(s.Query) == "" {
		return errors.Wrap(ErrInvalidParameters, "query must not be empty")
	}

	if _, err := strconv.ParseUint(s.City, 10, 64); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "city must be a numeric code, got %q", s.City)
	}

	if s.Page < 1 {
		return errors.Wrap(ErrInvalidParameters, fmt.Sprintf("page must be 1-based, got %d", s.Page))
	}

	return nil
}

func (s SearchParameters) ToUrlParams() url.Values {

	params := url.Values{}
	params.Add("query", s.Query)
	params.Add("city", s.City)
	params.Add("page", strconv.Itoa(s.Page))

	return params
}
