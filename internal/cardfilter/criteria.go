package cardfilter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskboard/api/internal/apperr"
)

// Criteria are the optional predicates of a card filter. They are combined
// with AND on top of the requester's reachability.
type Criteria struct {
	AssignedUserID *int64
	CreatorID      *int64
	BoardID        *int64
	ListID         *int64
	DueDateStart   *time.Time
	DueDateEnd     *time.Time
	TitleContains  string
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseCriteria reads criteria from query parameters. The first malformed
// value fails the whole parse.
func ParseCriteria(values url.Values) (Criteria, error) {
	var criteria Criteria
	var err error

	ids := []struct {
		param  string
		target **int64
	}{
		{param: "assignedUserId", target: &criteria.AssignedUserID},
		{param: "creatorId", target: &criteria.CreatorID},
		{param: "boardId", target: &criteria.BoardID},
		{param: "listId", target: &criteria.ListID},
	}
	for _, id := range ids {
		if *id.target, err = parseID(values, id.param); err != nil {
			return Criteria{}, err
		}
	}

	if criteria.DueDateStart, err = parseDate(values, "dueDateStart"); err != nil {
		return Criteria{}, err
	}
	if criteria.DueDateEnd, err = parseDate(values, "dueDateEnd"); err != nil {
		return Criteria{}, err
	}
	criteria.TitleContains = strings.TrimSpace(values.Get("titleContains"))
	return criteria, nil
}

func parseID(values url.Values, param string) (*int64, error) {
	raw := strings.TrimSpace(values.Get(param))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.Validation(param, "%s must be an integer", param)
	}
	return &value, nil
}

func parseDate(values url.Values, param string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(param))
	if raw == "" {
		return nil, nil
	}
	value, ok := ParseTime(raw)
	if !ok {
		return nil, apperr.Validation(param, "%s must be an ISO 8601 date or date-time", param)
	}
	return &value, nil
}

// ParseTime accepts RFC 3339 and ISO local date-times. Values without an
// offset are taken as UTC.
func ParseTime(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if value, err := time.Parse(layout, raw); err == nil {
			return value.UTC(), true
		}
	}
	return time.Time{}, false
}
