package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Latin letters with diacritics that show up in product names, folded to
// their closest ASCII form. Uppercase forms are handled by lowering first,
// except the dotted capital I which lowercases to i plus a combining dot.
var folder = strings.NewReplacer(
	"i\u0307", "i", "ı", "i",
	"ç", "c", "ć", "c", "č", "c",
	"ğ", "g",
	"ö", "o", "ó", "o", "ò", "o", "ô", "o", "ø", "o",
	"ş", "s", "š", "s", "ß", "ss",
	"ü", "u", "ú", "u", "ù", "u", "û", "u",
	"á", "a", "à", "a", "â", "a", "ä", "a", "å", "a", "ã", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ñ", "n", "ž", "z", "đ", "d",
	"&", " and ",
)

// Generate builds a URL-friendly slug from a display name:
//
//	"Linen Blend Shirt" -> "linen-blend-shirt"
//	"Çanta & Cüzdan"    -> "canta-and-cuzdan"
func Generate(name string) string {
	s := folder.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
