// Package ranking projects sort orders over the law counters.
//
// Score orders by upvotes minus downvotes. Trending orders by recency of the
// last vote first and uses score to break ties, so a more recently voted law
// is never placed below an older one. Laws that were never voted on come last.
package ranking

import (
	"cmp"
	"strings"

	"murphy/internal/models"

	"gorm.io/gorm/clause"
)

type Key string

const (
	KeyScore    Key = "score"
	KeyTrending Key = "trending"
	KeyRecent   Key = "recent"
)

type Direction string

const (
	Desc Direction = "desc"
	Asc  Direction = "asc"
)

// Order is a validated sort request.
type Order struct {
	Key       Key
	Direction Direction
}

func DefaultOrder() Order {
	return Order{Key: KeyScore, Direction: Desc}
}

// ParseOrder falls back to the defaults for empty values and rejects anything unknown.
func ParseOrder(key, direction string) (Order, bool) {
	o := DefaultOrder()
	switch k := Key(strings.ToLower(strings.TrimSpace(key))); k {
	case "":
	case KeyScore, KeyTrending, KeyRecent:
		o.Key = k
	default:
		return o, false
	}
	switch d := Direction(strings.ToLower(strings.TrimSpace(direction))); d {
	case "":
	case Asc, Desc:
		o.Direction = d
	default:
		return o, false
	}
	return o, true
}

func (o Order) desc() bool { return o.Direction != Asc }

// Clause renders the order as SQL. Ids break the final tie so pages are stable.
func (o Order) Clause() clause.OrderBy {
	desc := o.desc()
	score := clause.OrderByColumn{
		Column: clause.Column{Name: "(laws.upvotes - laws.downvotes)", Raw: true},
		Desc:   desc,
	}
	id := clause.OrderByColumn{Column: clause.Column{Table: "laws", Name: "id"}, Desc: desc}

	var cols []clause.OrderByColumn
	switch o.Key {
	case KeyTrending:
		cols = []clause.OrderByColumn{
			// never-voted rows sort after voted rows in both directions
			{Column: clause.Column{Name: "CASE WHEN laws.last_voted_at IS NULL THEN 1 ELSE 0 END", Raw: true}},
			{Column: clause.Column{Table: "laws", Name: "last_voted_at"}, Desc: desc},
			score,
			id,
		}
	case KeyRecent:
		cols = []clause.OrderByColumn{
			{Column: clause.Column{Table: "laws", Name: "created_at"}, Desc: desc},
			id,
		}
	default:
		cols = []clause.OrderByColumn{score, id}
	}
	return clause.OrderBy{Columns: cols}
}

// Compare orders two laws the same way Clause does: negative when a is listed before b.
func (o Order) Compare(a, b *models.Law) int {
	c := o.compareAsc(a, b)
	if o.desc() {
		c = -c
	}
	return c
}

func (o Order) compareAsc(a, b *models.Law) int {
	switch o.Key {
	case KeyTrending:
		if r := cmpNilLast(a, b, o.desc()); r != 0 {
			return r
		}
		if a.LastVotedAt != nil && b.LastVotedAt != nil {
			if r := a.LastVotedAt.Compare(*b.LastVotedAt); r != 0 {
				return r
			}
		}
		if r := cmp.Compare(a.Score(), b.Score()); r != 0 {
			return r
		}
	case KeyRecent:
		if r := a.CreatedAt.Compare(b.CreatedAt); r != 0 {
			return r
		}
	default:
		if r := cmp.Compare(a.Score(), b.Score()); r != 0 {
			return r
		}
	}
	return cmp.Compare(a.Id, b.Id)
}

// cmpNilLast is pre-negated for descending order so the caller's flip keeps nils last.
func cmpNilLast(a, b *models.Law, desc bool) int {
	an, bn := a.LastVotedAt == nil, b.LastVotedAt == nil
	if an == bn {
		return 0
	}
	r := 1
	if bn {
		r = -1
	}
	if desc {
		r = -r
	}
	return r
}
