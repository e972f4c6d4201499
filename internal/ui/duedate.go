package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var dueParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDueDate normalizes user input to YYYY-MM-DD. Input already in that
// shape is returned unchanged; anything else ("tomorrow", "next friday",
// "in 3 days") is resolved relative to now. Empty input stays empty so
// that validation can report it.
func ParseDueDate(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || isoDate.MatchString(input) {
		return input, nil
	}

	r, err := dueParser.Parse(input, now)
	if err != nil {
		return "", fmt.Errorf("failed to parse due date %q: %w", input, err)
	}
	if r == nil {
		return "", fmt.Errorf("could not understand due date %q (use YYYY-MM-DD or e.g. \"next friday\")", input)
	}
	return r.Time.Format("2006-01-02"), nil
}
