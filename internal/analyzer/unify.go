package analyzer

import (
	"fmt"

	"github.com/mcncl/jsoncodable/internal/errors"
)

// Unify combines two Types observed at logically equivalent positions into
// one Type able to represent either.
//
// During inference it is often not clear what the type of a value is. In
// [null, 123] the first element is Optional(Unknown) and only the second
// reveals Int, so the array element becomes Optional(Int).
func (a *Analyzer) Unify(x, y Type) (Type, error) {
	return a.unify(x, y, RootPath)
}

func (a *Analyzer) unify(x, y Type, path string) (Type, error) {
	if x.Equal(y) {
		return x, nil
	}

	switch {
	case x.Kind == Unknown:
		return y, nil
	case y.Kind == Unknown:
		return x, nil
	}

	if !a.opts.StrictNumbers {
		if widened, ok := widen(x.Kind, y.Kind); ok {
			return widened, nil
		}
	}

	switch {
	case x.Kind == Optional && y.Kind == Optional:
		inner, err := a.unify(x.Element(), y.Element(), path)
		if err != nil {
			return Type{}, err
		}
		return OptionalOf(inner), nil
	case x.Kind == Optional:
		inner, err := a.unify(x.Element(), y, path)
		if err != nil {
			return Type{}, err
		}
		return OptionalOf(inner), nil
	case y.Kind == Optional:
		inner, err := a.unify(x, y.Element(), path)
		if err != nil {
			return Type{}, err
		}
		return OptionalOf(inner), nil
	case x.Kind == Dict && y.Kind == Dict:
		return a.mergeDicts(x.Fields, y.Fields, path)
	case x.Kind == Array && y.Kind == Array:
		inner, err := a.unify(x.Element(), y.Element(), path+"[]")
		if err != nil {
			return Type{}, err
		}
		return ArrayOf(inner), nil
	}

	return Type{}, &errors.IncompatibleTypesError{Path: path, Left: x.String(), Right: y.String()}
}

// widen applies the numeric lattice Bool < Int < Float in either direction.
func widen(x, y Kind) (Type, bool) {
	switch {
	case x == Bool && y == Int, x == Int && y == Bool:
		return IntType, true
	case x == Bool && y == Float, x == Float && y == Bool:
		return FloatType, true
	case x == Int && y == Float, x == Float && y == Int:
		return FloatType, true
	}
	return Type{}, false
}

// mergeDicts merges the fields of two dictionaries found in the same slot.
// Keys present in both are unified; keys present in only one side become
// optional, since the other variant lacks them. No key is ever dropped.
func (a *Analyzer) mergeDicts(d1, d2 map[string]Type, path string) (Type, error) {
	merged := make(map[string]Type, len(d1)+len(d2))

	for key, t1 := range d1 {
		t2, common := d2[key]
		var (
			result Type
			err    error
		)
		if common {
			result, err = a.unify(t1, t2, fieldPath(path, key))
		} else {
			result, err = a.unify(OptionalOf(UnknownType), t1, fieldPath(path, key))
		}
		if err != nil {
			return Type{}, err
		}
		merged[key] = result
	}

	for key, t2 := range d2 {
		if _, common := d1[key]; common {
			continue
		}
		result, err := a.unify(OptionalOf(UnknownType), t2, fieldPath(path, key))
		if err != nil {
			return Type{}, err
		}
		merged[key] = result
	}

	if len(merged) < len(d1) || len(merged) < len(d2) {
		return Type{}, fmt.Errorf("%w: dictionary keys lost while merging at %s", errors.ErrInternalInconsistency, path)
	}

	return Type{Kind: Dict, Fields: merged}, nil
}
