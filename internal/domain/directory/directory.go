// Package directory resolves participants by their PS code.
package directory

import (
	"errors"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// ErrUserNotFound is returned when no directory entry carries the code.
var ErrUserNotFound = errors.New("user not found")

// Directory is an immutable snapshot of the participant directory.
type Directory struct {
	byCode map[string]model.User
}

// New indexes users by upper-cased, trimmed PS code. The first entry wins
// when a code repeats; entries without a code are ignored.
func New(users []model.User) *Directory {
	d := &Directory{byCode: make(map[string]model.User, len(users))}
	for _, u := range users {
		k := key(u.PSCode)
		if k == "" {
			continue
		}
		if _, ok := d.byCode[k]; !ok {
			d.byCode[k] = u
		}
	}
	return d
}

func key(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup finds the user for code, ignoring surrounding space and case.
func (d *Directory) Lookup(code string) (model.User, error) {
	k := key(code)
	if k == "" {
		return model.User{}, model.Invalid("psCode", "required")
	}
	u, ok := d.byCode[k]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

// Len returns the number of indexed codes.
func (d *Directory) Len() int { return len(d.byCode) }
