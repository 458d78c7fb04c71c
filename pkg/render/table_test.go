package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	out := Table([]string{"id", "nombre"}, [][]string{{"1", "Ana"}, {"2", "Luis"}})

	assert.Contains(t, out, "nombre")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "Luis")
	assert.Less(t, strings.Index(out, "Ana"), strings.Index(out, "Luis"))
}

func TestTable_NoRows(t *testing.T) {
	out := Table([]string{"id"}, nil)
	assert.Contains(t, out, "id")
}
