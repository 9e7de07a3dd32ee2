package wordlist

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	cultureRegion   = regexp.MustCompile(`^([a-z]{2,3}(?:[-_][A-Z][a-z]+)?[-_][A-Z]{2})[-_]`)
	cultureLanguage = regexp.MustCompile(`^([a-z]{2,3}(?:[-_][A-Z][a-z]+)?)[-_]`)
)

// CultureForFile derives the collation culture from a dictionary file name,
// e.g. en_US_user.xml -> en-US, nld_OCRFixReplaceList.xml -> nl. Names
// without a usable prefix use the root collation.
func CultureForFile(name string) language.Tag {
	base := filepath.Base(name)
	for _, re := range []*regexp.Regexp{cultureRegion, cultureLanguage} {
		m := re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		tag, err := language.Parse(strings.ReplaceAll(m[1], "_", "-"))
		if err == nil && tag != language.Und {
			return tag
		}
	}
	return language.Und
}

// comparator orders strings by culture ignoring case, then by culture with
// case, then by bytes. The last stage makes the order total.
type comparator struct {
	fold  *collate.Collator
	exact *collate.Collator
}

func newComparator(tag language.Tag) *comparator {
	return &comparator{
		fold:  collate.New(tag, collate.IgnoreCase),
		exact: collate.New(tag),
	}
}

func (c *comparator) compare(a, b string) int {
	if r := c.fold.CompareString(a, b); r != 0 {
		return r
	}
	if r := c.exact.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

func (c *comparator) compareItems(form ItemForm) func(a, b *Item) int {
	switch form {
	case FormPair:
		return func(a, b *Item) int {
			if r := c.compare(a.From, b.From); r != 0 {
				return r
			}
			return c.compare(a.To, b.To)
		}
	case FormFlaggedText:
		return func(a, b *Item) int {
			if r := c.compare(a.Text, b.Text); r != 0 {
				return r
			}
			switch {
			case a.Regex == b.Regex:
				return 0
			case b.Regex:
				return -1
			default:
				return 1
			}
		}
	default:
		return func(a, b *Item) int { return c.compare(a.Text, b.Text) }
	}
}

// sortItems sorts the items of every sub-list in the tree. Sub-list order
// is left alone.
func (c *comparator) sortItems(sl *SubList) {
	if len(sl.Items) > 1 {
		slices.SortStableFunc(sl.Items, c.compareItems(sl.Rule.ItemForm))
	}
	for _, child := range sl.Children {
		c.sortItems(child)
	}
}
