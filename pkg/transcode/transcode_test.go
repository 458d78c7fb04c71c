package transcode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const spanishCSV = "id,nombre,ciudad,descripcion\n" +
	"1,José,Bogotá,Suscripción anual con descuento\n" +
	"2,María,Medellín,Creación de contenido en vídeo\n" +
	"3,Andrés,Cali,Publicación semanal para la región\n"

func encodeLatin1(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func encodeUTF16(t *testing.T, s string, endian unicode.Endianness, bom unicode.BOMPolicy) []byte {
	t.Helper()
	out, err := unicode.UTF16(endian, bom).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestDetect_EmptyIsUTF8(t *testing.T) {
	d, err := Detect(nil)
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", d.Charset)
	assert.Equal(t, 100, d.Confidence)
}

func TestDetect_ValidUTF8(t *testing.T) {
	d, err := Detect([]byte(spanishCSV))
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", d.Charset)
}

func TestDetect_Latin1(t *testing.T) {
	d, err := Detect(encodeLatin1(t, spanishCSV))
	require.NoError(t, err)
	assert.NotEqual(t, "UTF-8", d.Charset)
	assert.NotEmpty(t, d.Charset)
}

func TestDecode_Windows1252(t *testing.T) {
	out, err := Decode(encodeLatin1(t, "José,Bogotá"), "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "José,Bogotá", string(out))
}

func TestDecode_ISO88591Alias(t *testing.T) {
	out, err := Decode([]byte{'a', 0xF1, 'o'}, "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "año", string(out))
}

func TestDecode_InvalidUTF8Replaced(t *testing.T) {
	out, err := Decode([]byte{'a', 0xFF, 'b'}, "UTF-8")
	require.NoError(t, err)
	assert.True(t, utf8.Valid(out))
	assert.Equal(t, "a\uFFFDb", string(out))
}

func TestDecode_StripsBOM(t *testing.T) {
	in := append(append([]byte{}, BOM...), "id,nombre\n"...)
	out, err := Decode(in, "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "id,nombre\n", string(out))
}

func TestDecode_UnsupportedCharset(t *testing.T) {
	_, err := Decode([]byte("x"), "IBM420_rtl")
	assert.ErrorIs(t, err, ErrUnsupportedCharset)
}

func TestConvertFile_Latin1(t *testing.T) {
	path := writeFile(t, "cuentas.csv", encodeLatin1(t, spanishCSV))

	d, err := ConvertFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, d.Charset)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, utf8.Valid(got))
	assert.Equal(t, BOM, got[:3])
	assert.Contains(t, string(got), "José")
	assert.Contains(t, string(got), "Bogotá")
}

func TestConvertFile_Idempotent(t *testing.T) {
	path := writeFile(t, "contenidos.csv", []byte(spanishCSV))

	_, err := ConvertFile(path)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = ConvertFile(path)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, strings.Count(string(second), "\uFEFF"))
	assert.Equal(t, string(BOM)+spanishCSV, string(second))
}

func TestConvertFile_KeepsPermissions(t *testing.T) {
	path := writeFile(t, "tiempo.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, os.Chmod(path, 0600))

	_, err := ConvertFile(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConvertFile_Missing(t *testing.T) {
	_, err := ConvertFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestDetect_UTF16WithoutBOM(t *testing.T) {
	tests := []struct {
		name   string
		endian unicode.Endianness
		want   string
	}{
		{"little endian", unicode.LittleEndian, "UTF-16LE"},
		{"big endian", unicode.BigEndian, "UTF-16BE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := encodeUTF16(t, "id,n\n1,a\n2,b\n", tt.endian, unicode.IgnoreBOM)
			require.True(t, utf8.Valid(raw))

			d, err := Detect(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Charset)
		})
	}
}

func TestConvertFile_UTF16(t *testing.T) {
	tests := []struct {
		name   string
		endian unicode.Endianness
		bom    unicode.BOMPolicy
	}{
		{"little endian without BOM", unicode.LittleEndian, unicode.IgnoreBOM},
		{"little endian with BOM", unicode.LittleEndian, unicode.UseBOM},
		{"big endian without BOM", unicode.BigEndian, unicode.IgnoreBOM},
		{"big endian with BOM", unicode.BigEndian, unicode.UseBOM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "cuentas.csv", encodeUTF16(t, spanishCSV, tt.endian, tt.bom))

			d, err := ConvertFile(path)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(d.Charset, "UTF-16"), d.Charset)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(BOM)+spanishCSV, string(content))
		})
	}
}
