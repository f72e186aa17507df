package prismic

import (
	"fmt"
	"regexp"
)

var (
	schemePrefix = regexp.MustCompile(`^https?://`)
	hostSuffix   = regexp.MustCompile(`(\.cdn)?\.prismic.+`)
)

// RepositoryName derives the repository name from an API endpoint:
// "https://blog.cdn.prismic.io/api/v2" -> "blog".
func RepositoryName(endpoint string) string {
	repo := schemePrefix.ReplaceAllString(endpoint, "")
	return hostSuffix.ReplaceAllString(repo, "")
}

// PreviewScriptURL is the toolbar script that enables previews for repo.
func PreviewScriptURL(repo string) string {
	return fmt.Sprintf("//static.cdn.prismic.io/prismic.min.js?repo=%s&new=true", repo)
}
