package wordlist

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestCultureForFile(t *testing.T) {
	cases := map[string]string{
		"en_US_user.xml":                 "en-US",
		"pt-BR_OCRFixReplaceList.xml":    "pt-BR",
		"sr-Latn-RS_names.xml":           "sr-Latn-RS",
		"en_names.xml":                   "en",
		"/dicts/da_NoBreakAfterList.xml": "da",
		"names.xml":                      "und",
		"OCRFixReplaceList.xml":          "und",
	}
	for name, want := range cases {
		assert.Equal(t, want, CultureForFile(name).String(), name)
	}
}

func TestCultureForFileThreeLetterCode(t *testing.T) {
	tag := CultureForFile("nld_OCRFixReplaceList.xml")
	base, _ := tag.Base()
	assert.Equal(t, "nl", base.String())
}

func TestComparatorOrder(t *testing.T) {
	c := newComparator(language.Und)
	words := []string{"Zebra", "apple", "Apple", "banana"}
	slices.SortFunc(words, c.compare)
	assert.Equal(t, []string{"apple", "Apple", "banana", "Zebra"}, words)
}

func TestComparatorIsTotal(t *testing.T) {
	c := newComparator(language.English)
	// Differ only in code points the collation ignores.
	a, b := "a\u00ad", "a"
	assert.NotZero(t, c.compare(a, b))
	assert.Equal(t, -c.compare(a, b), c.compare(b, a))
}

func TestFlaggedItemsPlainBeforeRegex(t *testing.T) {
	c := newComparator(language.Und)
	cmp := c.compareItems(FormFlaggedText)
	plain := &Item{Text: "x"}
	regex := &Item{Text: "x", Regex: true}
	assert.Negative(t, cmp(plain, regex))
	assert.Positive(t, cmp(regex, plain))
}
