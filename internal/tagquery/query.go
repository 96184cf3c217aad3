package tagquery

import "strings"

// Mode is the boolean combinator for a query's terms.
type Mode string

const (
	// ModeAnd requires every term to match.
	ModeAnd Mode = "AND"
	// ModeOr requires at least one term to match.
	ModeOr Mode = "OR"
)

// Query is a parsed tag query: a mode plus normalized search terms.
// Queries are cheap and ephemeral; parse one per search or export rule.
type Query struct {
	Mode  Mode
	Terms []string
}

// Parse parses the `[|&]?tag(,tag)*` grammar. A leading '|' selects OR,
// a leading '&' selects AND; no prefix defaults to AND. Terms are split
// on commas, trimmed, lowercased, and empties dropped. There is no
// invalid query: any other leading character is simply part of the first
// term, which keeps search-as-you-type input from ever erroring.
func Parse(raw string) Query {
	raw = strings.TrimSpace(raw)

	mode := ModeAnd
	if strings.HasPrefix(raw, "|") {
		mode = ModeOr
		raw = raw[1:]
	} else if strings.HasPrefix(raw, "&") {
		raw = raw[1:]
	}

	return Query{Mode: mode, Terms: SplitTags(raw)}
}

// SplitTags splits a comma-separated tag string into normalized
// (trimmed, lowercased) non-empty fragments. This is the one place the
// wire representation "a, b, c" is taken apart; the matcher and the
// vocabulary both go through it.
func SplitTags(tagString string) []string {
	if strings.TrimSpace(tagString) == "" {
		return nil
	}

	parts := strings.Split(tagString, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Matches reports whether a record's tag string satisfies the query.
// A term matches when it is a substring of any record tag, so "port"
// finds "portrait". Under AND every term must match; under OR one is
// enough.
//
// An empty term list is ambiguous by design: an empty search box means
// "show everything" but an empty export rule means "export nothing".
// The caller supplies that choice via emptyMatchesAll instead of the
// matcher guessing from context.
func (q Query) Matches(tagString string, emptyMatchesAll bool) bool {
	if len(q.Terms) == 0 {
		return emptyMatchesAll
	}

	recordTags := SplitTags(tagString)

	if q.Mode == ModeOr {
		for _, term := range q.Terms {
			if anyContains(recordTags, term) {
				return true
			}
		}
		return false
	}

	for _, term := range q.Terms {
		if !anyContains(recordTags, term) {
			return false
		}
	}
	return true
}

func anyContains(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(tag, term) {
			return true
		}
	}
	return false
}
