package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Branch is the closed set of academic branches known to the portal.
// Values arriving from the database or API are parsed through ParseBranch so
// unknown codes are rejected at the boundary instead of flowing through as
// arbitrary strings.
type Branch string

const (
	BranchAIML   Branch = "AIML"
	BranchAIDS   Branch = "AIDS"
	BranchCST    Branch = "CST"
	BranchCSE    Branch = "CSE"
	BranchCommon Branch = "COMMON"
)

// ParseBranch validates a raw branch code.
func ParseBranch(raw string) (Branch, error) {
	switch Branch(strings.ToUpper(strings.TrimSpace(raw))) {
	case BranchAIML:
		return BranchAIML, nil
	case BranchAIDS:
		return BranchAIDS, nil
	case BranchCST:
		return BranchCST, nil
	case BranchCSE:
		return BranchCSE, nil
	case BranchCommon:
		return BranchCommon, nil
	}
	return "", fmt.Errorf("unknown branch %q", raw)
}

func (b Branch) String() string {
	return string(b)
}

// Value implements driver.Valuer.
func (b Branch) Value() (driver.Value, error) {
	if _, err := ParseBranch(string(b)); err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (b *Branch) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Branch", src)
	}
	parsed, err := ParseBranch(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
