package printables

import (
	"fmt"
	"regexp"
	"strings"
)

var modelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?printables\.com/(?:[a-z]{2}/)?model/(\d+)(?:-([a-zA-Z0-9._~-]+))?(?:[/?#].*)?$`),
	regexp.MustCompile(`^(?:www\.)?printables\.com/(?:[a-z]{2}/)?model/(\d+)(?:-([a-zA-Z0-9._~-]+))?(?:[/?#].*)?$`),
	regexp.MustCompile(`^(\d+)$`),
}

// ParseModelURL extracts the numeric model id and the slug (if any) from a
// model page URL. A bare numeric id is accepted as a shorthand for the
// model page.
func ParseModelURL(rawURL string) (string, string, error) {
	rawURL = strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
	for _, pattern := range modelPatterns {
		matches := pattern.FindStringSubmatch(rawURL)
		if len(matches) >= 2 {
			slug := ""
			if len(matches) >= 3 {
				slug = matches[2]
			}
			return matches[1], slug, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
}
