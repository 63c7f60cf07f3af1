package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Filter renders g as a MongoDB filter document. A nil group renders as an
// empty document, which matches every record.
func Filter(g *Group) bson.M {
	if g == nil || len(g.Predicates) == 0 {
		return bson.M{}
	}

	clauses := make(bson.A, 0, len(g.Predicates))
	for _, p := range g.Predicates {
		clauses = append(clauses, predicateDoc(p))
	}

	key := "$and"
	if g.Mode == Or {
		key = "$or"
	}

	return bson.M{key: clauses}
}

func predicateDoc(p Predicate) bson.M {
	switch p.Op {
	case OpEqual:
		if p.Value == nil {
			return bson.M{p.Field: bson.M{"$eq": nil}}
		}

		return bson.M{p.Field: p.Value}
	case OpNotEqual:
		return bson.M{p.Field: bson.M{"$ne": p.Value}}
	case OpIn:
		return bson.M{p.Field: bson.M{"$in": p.Value}}
	case OpRegex:
		return bson.M{p.Field: primitive.Regex{Pattern: toString(p.Value), Options: "i"}}
	case OpGTE:
		return bson.M{p.Field: bson.M{"$gte": p.Value}}
	case OpLTE:
		return bson.M{p.Field: bson.M{"$lte": p.Value}}
	case OpElemMatch:
		return bson.M{p.Field: bson.M{"$elemMatch": bson.M{p.SubField: p.Value}}}
	default:
		return bson.M{p.Field: p.Value}
	}
}

func toString(v any) string {
	s, _ := v.(string)

	return s
}

// SortDoc renders s as a sort document, or nil for store order.
func SortDoc(s *Sort) bson.D {
	if s == nil {
		return nil
	}

	return bson.D{{Key: s.Field, Value: int(s.Direction)}}
}

// FindOptions returns find options carrying the builder's skip, limit and
// sort, with the English collation used for list ordering.
func (b *Builder) FindOptions() *options.FindOptions {
	opts := options.Find().SetCollation(&options.Collation{Locale: "en"})

	if b.offset > 0 {
		opts.SetSkip(b.offset)
	}

	if b.limit > 0 {
		opts.SetLimit(b.limit)
	}

	if s := SortDoc(b.sort); s != nil {
		opts.SetSort(s)
	}

	return opts
}

// Filter renders the builder's criteria.
func (b *Builder) Filter() bson.M {
	return Filter(b.Criteria())
}
