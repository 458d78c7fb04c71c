package db

import (
	"fmt"
)

type transformFunc func(columns []string, values []any) any

var transformFuncs = map[string]transformFunc{
	"array":   transformArray,
	"objects": transformObject,
}

func normalize(val any) any {
	if b, ok := val.([]byte); ok {
		return string(b)
	}
	return val
}

func transformArray(columns []string, values []any) any {
	arrRow := make([]any, len(columns))

	for i := range columns {
		arrRow[i] = normalize(values[i])
	}
	return arrRow
}

func transformObject(columns []string, values []any) any {
	objRow := make(map[string]any)

	for i, col := range columns {
		objRow[col] = normalize(values[i])
	}
	return objRow
}

func transformText(columns []string, values []any) any {
	textRow := make([]string, len(columns))

	for i := range columns {
		switch val := normalize(values[i]).(type) {
		case nil:
			textRow[i] = "NULL"
		case string:
			textRow[i] = val
		default:
			textRow[i] = fmt.Sprintf("%v", val)
		}
	}
	return textRow
}
