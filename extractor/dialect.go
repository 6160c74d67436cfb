package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/budget-finance/budget/extractor/cibc"
	"github.com/budget-finance/budget/extractor/common"
	"github.com/budget-finance/budget/extractor/nbc"
	"github.com/budget-finance/budget/extractor/rbc"
	"github.com/budget-finance/budget/extractor/scotia"
	"github.com/budget-finance/budget/extractor/walmart"
)

// Dialect identifies the export layout of one institution.
type Dialect int

const (
	Unrecognized Dialect = iota
	CIBC
	Scotia
	RBC
	NBC
	Walmart
)

// Mapper turns one raw row into a canonical transaction.
type Mapper func(common.RawRow) common.Transaction

// precedence is the order keywords are tested in. The first match wins, so a
// name carrying two keywords resolves to the earlier one.
var precedence = []Dialect{CIBC, Scotia, RBC, NBC, Walmart}

// Detect infers the dialect from a file name alone.
func Detect(fileName string) Dialect {
	base := filepath.Base(fileName)
	name := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	for _, d := range precedence {
		if strings.Contains(name, d.Keyword()) {
			return d
		}
	}
	return Unrecognized
}

// Keyword is the lower-case file name fragment that selects d.
func (d Dialect) Keyword() string {
	switch d {
	case CIBC:
		return "cibc"
	case Scotia:
		return "scotia"
	case RBC:
		return "rbc"
	case NBC:
		return "nbc"
	case Walmart:
		return "walmart"
	}
	return ""
}

// Mapper returns nil for Unrecognized.
func (d Dialect) Mapper() Mapper {
	switch d {
	case CIBC:
		return cibc.Map
	case Scotia:
		return scotia.Map
	case RBC:
		return rbc.Map
	case NBC:
		return nbc.Map
	case Walmart:
		return walmart.Map
	}
	return nil
}

func (d Dialect) String() string {
	switch d {
	case CIBC:
		return cibc.Bank
	case Scotia:
		return scotia.Bank
	case RBC:
		return rbc.Bank
	case NBC:
		return nbc.Bank
	case Walmart:
		return walmart.Bank
	case Unrecognized:
		return "Unrecognized"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Dialect) UnmarshalText(text []byte) error {
	parsed, ok := ParseDialect(string(text))
	if !ok {
		return fmt.Errorf("unknown dialect %q", text)
	}
	*d = parsed
	return nil
}

// ParseDialect looks a dialect up by its bank label, ignoring case.
func ParseDialect(name string) (Dialect, bool) {
	for _, d := range append([]Dialect{Unrecognized}, precedence...) {
		if strings.EqualFold(name, d.String()) {
			return d, true
		}
	}
	return Unrecognized, false
}
