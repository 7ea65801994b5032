package core

import (
	"net/url"
	"strings"
)

type Parameter struct {
	Name  string
	Value string
}

// Parameters is an ordered set of query parameters. Insertion order is the
// order the pairs appear in the encoded query string; duplicates are kept.
type Parameters struct {
	pairs []Parameter
}

// Params builds Parameters from alternating name/value arguments. A trailing
// name without a value is paired with an empty value.
func Params(pairs ...string) Parameters {
	out := Parameters{pairs: make([]Parameter, 0, (len(pairs)+1)/2)}
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		out.pairs = append(out.pairs, Parameter{Name: pairs[i], Value: value})
	}
	return out
}

func (p Parameters) Add(name string, value string) Parameters {
	pairs := make([]Parameter, len(p.pairs), len(p.pairs)+1)
	copy(pairs, p.pairs)
	return Parameters{pairs: append(pairs, Parameter{Name: name, Value: value})}
}

func (p Parameters) Len() int {
	return len(p.pairs)
}

func (p Parameters) All() []Parameter {
	return append([]Parameter(nil), p.pairs...)
}

// Encode form-encodes every pair in insertion order. Only alphanumerics and
// "-_." pass through unescaped; spaces become "+".
func (p Parameters) Encode() string {
	if len(p.pairs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(formEscape(pair.Name))
		b.WriteByte('=')
		b.WriteString(formEscape(pair.Value))
	}
	return b.String()
}

// formEscape matches classic form encoding, where "~" is percent-encoded.
func formEscape(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "~", "%7E")
}

// AppendQuery appends params to endpoint. The first pair is joined with "?"
// when endpoint has no query string yet, "&" otherwise. An existing query
// string is never rewritten.
func AppendQuery(endpoint string, params Parameters) string {
	if params.Len() == 0 {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + params.Encode()
}
