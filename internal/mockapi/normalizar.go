package mockapi

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// quitaAcentos descompone (NFD), elimina las marcas diacríticas y recompone,
// para que "categoría" y "categoria" se comparen iguales en la búsqueda q.
var quitaAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// plegar normaliza un texto para búsqueda: minúsculas y sin acentos.
func plegar(s string) string {
	bajo := strings.ToLower(s)
	out, _, err := transform.String(quitaAcentos, bajo)
	if err != nil {
		return bajo
	}
	return out
}
