package query

import (
	"fmt"
	"strconv"
	"strings"
)

// kilometresPerDegree is the length of one degree of latitude
const kilometresPerDegree = 111.32

// minRadiusKm keeps points without a stated precision searchable
const minRadiusKm = 0.01

// Sparql renders a complete SELECT query returning at most limit items.
// A non-positive limit means no limit.
func Sparql(q Query, limit int) string {
	var b strings.Builder
	b.WriteString("SELECT DISTINCT ?item WHERE {\n")
	b.WriteString(q.Pattern())
	b.WriteString("}")
	if limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", limit)
	}
	return b.String()
}

func (q ClaimQuery) Pattern() string {
	return fmt.Sprintf("  ?item wdt:%s wd:%s .\n", q.Property.ID, q.Target.ID)
}

func (q StringQuery) Pattern() string {
	return fmt.Sprintf("  ?item wdt:%s %s .\n", q.Property.ID, quoteLiteral(q.Value))
}

func (q QuantityQuery) Pattern() string {
	return fmt.Sprintf("  ?item wdt:%s ?value .\n  FILTER(?value >= %s && ?value <= %s)\n",
		q.Property.ID,
		formatFloat(q.Amount-q.Tolerance),
		formatFloat(q.Amount+q.Tolerance))
}

func (q AroundQuery) Pattern() string {
	radius := q.Radius * kilometresPerDegree
	if radius < minRadiusKm {
		radius = minRadiusKm
	}
	return fmt.Sprintf(`  SERVICE wikibase:around {
    ?item wdt:%s ?location .
    bd:serviceParam wikibase:center "Point(%s %s)"^^geo:wktLiteral .
    bd:serviceParam wikibase:radius "%s" .
  }
`, q.Property.ID, formatFloat(q.Longitude), formatFloat(q.Latitude), formatFloat(radius))
}

func (q BetweenQuery) Pattern() string {
	return fmt.Sprintf("  ?item wdt:%s ?time .\n  FILTER(?time >= \"%s\"^^xsd:dateTime && ?time <= \"%s\"^^xsd:dateTime)\n",
		q.Property.ID, XSDDateTime(q.Begin.Time), XSDDateTime(q.End.Time))
}

// XSDDateTime converts a Wikibase timestamp such as "+00000001952-03-11T00:00:00Z"
// to xsd:dateTime ("1952-03-11T00:00:00Z"). Unknown month or day parts
// ("1952-00-00") become the first month or day.
func XSDDateTime(wikibase string) string {
	sign := ""
	rest := wikibase
	switch {
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	case strings.HasPrefix(rest, "-"):
		sign, rest = "-", rest[1:]
	}

	year, tail, ok := strings.Cut(rest, "-")
	if !ok {
		return wikibase
	}
	year = strings.TrimLeft(year, "0")
	for len(year) < 4 {
		year = "0" + year
	}

	date, clock, _ := strings.Cut(tail, "T")
	parts := strings.Split(date, "-")
	for i, p := range parts {
		if p == "00" {
			parts[i] = "01"
		}
	}

	out := sign + year + "-" + strings.Join(parts, "-")
	if clock != "" {
		out += "T" + clock
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func quoteLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
