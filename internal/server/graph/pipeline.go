// Package graph composes read-time aggregations over the identity store as a
// sequence of typed stages (match, lookup, size, membership, unwind, first,
// project, sort) and renders them into one parameterised PostgreSQL query.
//
// Stage names follow the document-store vocabulary the queries were first
// written in; each stage maps onto a relational construct:
//
//	Match     WHERE col = $n
//	Size      (SELECT count(*) FROM t WHERE t.fk = local) AS name
//	In        EXISTS (SELECT 1 FROM t WHERE t.fk = local AND t.member = $n) AS name
//	Unwind    CROSS JOIN LATERAL unnest(array) WITH ORDINALITY AS a(ref, position)
//	Lookup    JOIN t AS a ON a.fk = local
//	First     LEFT JOIN LATERAL (SELECT ... LIMIT 1) AS a ON TRUE
//	Project   the select list, in order
//	Sort      ORDER BY
//
// Identifiers are trusted (they come from code); values are always bound.
package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoProjection is returned by Build when the pipeline selects nothing.
var ErrNoProjection = errors.New("graph: pipeline has no projection")

// Query is a rendered pipeline.
type Query struct {
	SQL  string
	Args []any
}

// Row is the scanning surface of one result row; *sql.Rows satisfies it.
type Row interface {
	Scan(dest ...any) error
}

// Lookup joins every row of From whose ForeignField equals LocalField.
type Lookup struct {
	From         string
	As           string
	LocalField   string
	ForeignField string
}

// First joins at most one row of From, projecting Fields; the alias columns
// are NULL when nothing matches.
type First struct {
	From         string
	As           string
	LocalField   string
	ForeignField string
	Fields       []string
}

// Size counts rows of From whose ForeignField equals LocalField.
type Size struct {
	As           string
	From         string
	LocalField   string
	ForeignField string
}

// In reports whether Value appears in MemberField among rows of From whose
// ForeignField equals LocalField. A nil or empty Value renders FALSE.
type In struct {
	As           string
	From         string
	LocalField   string
	ForeignField string
	MemberField  string
	Value        any
}

type fragment struct {
	sql  string
	args []any
}

// Pipeline accumulates stages. The zero value is not usable; start with From.
type Pipeline struct {
	from     string
	computed map[string]fragment
	project  []string
	joins    []fragment
	matches  []fragment
	sorts    []string
	limit    int
}

// From starts a pipeline over collection, aliased as alias.
func From(collection, alias string) *Pipeline {
	return &Pipeline{
		from:     collection + " AS " + alias,
		computed: map[string]fragment{},
	}
}

// Match keeps rows whose field equals value.
func (p *Pipeline) Match(field string, value any) *Pipeline {
	p.matches = append(p.matches, fragment{sql: field + " = ?", args: []any{value}})
	return p
}

// Unwind expands the array column field into one row per element, preserving
// element order. The alias exposes columns ref (the element) and position
// (1-based index).
func (p *Pipeline) Unwind(field, as string) *Pipeline {
	p.joins = append(p.joins, fragment{
		sql: fmt.Sprintf("CROSS JOIN LATERAL unnest(%s) WITH ORDINALITY AS %s(ref, position)", field, as),
	})
	return p
}

// Lookup adds an inner join.
func (p *Pipeline) Lookup(l Lookup) *Pipeline {
	p.joins = append(p.joins, fragment{
		sql: fmt.Sprintf("JOIN %s AS %s ON %s.%s = %s", l.From, l.As, l.As, l.ForeignField, l.LocalField),
	})
	return p
}

// First adds a single-match left join.
func (p *Pipeline) First(f First) *Pipeline {
	cols := make([]string, len(f.Fields))
	for i, c := range f.Fields {
		cols[i] = "src." + c
	}
	p.joins = append(p.joins, fragment{
		sql: fmt.Sprintf("LEFT JOIN LATERAL (SELECT %s FROM %s AS src WHERE src.%s = %s LIMIT 1) AS %s ON TRUE",
			strings.Join(cols, ", "), f.From, f.ForeignField, f.LocalField, f.As),
	})
	return p
}

// Size defines the computed field s.As. It is selected only when projected.
func (p *Pipeline) Size(s Size) *Pipeline {
	p.computed[s.As] = fragment{
		sql: fmt.Sprintf("(SELECT count(*) FROM %s AS src WHERE src.%s = %s) AS %s", s.From, s.ForeignField, s.LocalField, s.As),
	}
	return p
}

// In defines the computed boolean field in.As. It is selected only when projected.
func (p *Pipeline) In(in In) *Pipeline {
	if isEmpty(in.Value) {
		p.computed[in.As] = fragment{sql: "FALSE AS " + in.As}
		return p
	}
	p.computed[in.As] = fragment{
		sql: fmt.Sprintf("EXISTS (SELECT 1 FROM %s AS src WHERE src.%s = %s AND src.%s = ?) AS %s",
			in.From, in.ForeignField, in.LocalField, in.MemberField, in.As),
		args: []any{in.Value},
	}
	return p
}

// Project sets the output columns, in order. Names of computed fields render
// their expression; anything else is selected as written.
func (p *Pipeline) Project(fields ...string) *Pipeline {
	p.project = append(p.project[:0], fields...)
	return p
}

// Sort appends ORDER BY terms.
func (p *Pipeline) Sort(terms ...string) *Pipeline {
	p.sorts = append(p.sorts, terms...)
	return p
}

// Limit caps the number of rows; zero means no limit.
func (p *Pipeline) Limit(n int) *Pipeline {
	p.limit = n
	return p
}

// Build renders the pipeline. Placeholders are numbered in text order.
func (p *Pipeline) Build() (Query, error) {
	if len(p.project) == 0 {
		return Query{}, ErrNoProjection
	}

	var parts []fragment

	cols := make([]fragment, len(p.project))
	for i, name := range p.project {
		if c, ok := p.computed[name]; ok {
			cols[i] = c
			continue
		}
		cols[i] = fragment{sql: name}
	}
	parts = append(parts, join("SELECT ", cols, ", "))
	parts = append(parts, fragment{sql: " FROM " + p.from})

	for _, j := range p.joins {
		parts = append(parts, fragment{sql: " " + j.sql, args: j.args})
	}

	if len(p.matches) > 0 {
		parts = append(parts, join(" WHERE ", p.matches, " AND "))
	}

	if len(p.sorts) > 0 {
		parts = append(parts, fragment{sql: " ORDER BY " + strings.Join(p.sorts, ", ")})
	}

	if p.limit > 0 {
		parts = append(parts, fragment{sql: " LIMIT " + strconv.Itoa(p.limit)})
	}

	var sb strings.Builder
	var args []any
	for _, f := range parts {
		k := 0
		for _, r := range f.sql {
			if r != '?' {
				sb.WriteRune(r)
				continue
			}
			args = append(args, f.args[k])
			k++
			sb.WriteString("$" + strconv.Itoa(len(args)))
		}
	}

	return Query{SQL: sb.String(), Args: args}, nil
}

func join(prefix string, frags []fragment, sep string) fragment {
	out := fragment{sql: prefix}
	for i, f := range frags {
		if i > 0 {
			out.sql += sep
		}
		out.sql += f.sql
		out.args = append(out.args, f.args...)
	}
	return out
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	default:
		return false
	}
}
