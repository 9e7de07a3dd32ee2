package wordlist

import (
	"fmt"
	"path/filepath"
)

// Kind selects the schema a dictionary file is validated against.
type Kind int

const (
	ReplaceList Kind = iota + 1
	NoBreakAfterList
	NamesList
	UserList
)

func (k Kind) String() string {
	switch k {
	case ReplaceList:
		return "OCRFixReplaceList"
	case NoBreakAfterList:
		return "NoBreakAfterList"
	case NamesList:
		return "NamesList"
	case UserList:
		return "UserList"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FilePatterns lists, per kind, the glob used to find dictionary files in a
// folder. The order is the order in which a folder is processed.
var FilePatterns = []struct {
	Kind    Kind
	Pattern string
}{
	{ReplaceList, "*_OCRFixReplaceList.xml"},
	{NoBreakAfterList, "*_NoBreakAfterList.xml"},
	{NamesList, "*names*.xml"},
	{UserList, "??_??_user.xml"},
}

// KindForFile returns the dictionary kind for a file name.
func KindForFile(name string) (Kind, error) {
	base := filepath.Base(name)
	for _, p := range FilePatterns {
		if ok, _ := filepath.Match(p.Pattern, base); ok {
			return p.Kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownKind, base)
}

// Files lists the dictionary files of one kind in dir, sorted by name.
func Files(dir string, kind Kind) ([]string, error) {
	for _, p := range FilePatterns {
		if p.Kind != kind {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, p.Pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", p.Pattern, err)
		}
		return matches, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}
