// Package replay renders the per-turn decision trace and its canonical
// replay hash. The hash covers every decision that shaped the response, so
// two runs of the same session transcript against the same contract produce
// byte-identical hashes.
package replay

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/joeycumines/go-utilpkg/jsonenc"
)

// Canonicalize renders v as canonical JSON: object keys sorted bytewise, no
// insignificant whitespace, UTF-8 throughout. Only strings, booleans,
// integers, nil, maps, and slices are representable; floats are rejected
// because their formatting is not stable across platforms.
func Canonicalize(v any) ([]byte, error) {
	return appendValue(make([]byte, 0, 256), v)
}

func appendValue(dst []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(dst, "null"...), nil
	case string:
		return jsonenc.AppendString(dst, x), nil
	case bool:
		if x {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case int:
		return strconv.AppendInt(dst, int64(x), 10), nil
	case int64:
		return strconv.AppendInt(dst, x, 10), nil
	case map[string]any:
		return appendObject(dst, x)
	case []any:
		return appendArray(dst, x)
	}
	return nil, fmt.Errorf("replay: value %T is not canonicalizable", v)
}

func appendObject(dst []byte, m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = jsonenc.AppendString(dst, k)
		dst = append(dst, ':')
		var err error
		dst, err = appendValue(dst, m[k])
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func appendArray(dst []byte, a []any) ([]byte, error) {
	dst = append(dst, '[')
	for i, v := range a {
		if i > 0 {
			dst = append(dst, ',')
		}
		var err error
		dst, err = appendValue(dst, v)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ']'), nil
}
