package parser

import (
	"context"
	"html"
	"regexp"

	"github.com/bakape/forum/common"
)

// Only matches @ at the start of the body, after whitespace or after a tag, so
// URLs and attributes like href="https://medium.com/@name" are never scanned
var mentionRegexp = regexp.MustCompile(`(?:^|[\s>])@([^\s<>"']+)`)

// UserDirectory looks up registered users. Both methods return nil, if no
// user matches.
type UserDirectory interface {
	// Case-insensitive exact display name match
	FindByDisplayName(ctx context.Context, name string) (*common.User, error)

	// Case-insensitive substring match on the login name
	FindByLoginContains(ctx context.Context, s string) (*common.User, error)
}

// FindMentions returns the IDs of users mentioned with @name in body, in scan
// order. The acting user and repeated mentions are skipped.
func FindMentions(ctx context.Context, body, actor string, users UserDirectory,
) (ids []string, err error) {
	seen := make(map[string]bool)
	for _, m := range mentionRegexp.FindAllStringSubmatch(body, common.MaxMentionMatches) {
		name := html.UnescapeString(m[1])

		var u *common.User
		u, err = users.FindByDisplayName(ctx, name)
		if err != nil {
			return
		}
		if u == nil {
			u, err = users.FindByLoginContains(ctx, name)
			if err != nil {
				return
			}
		}
		if u == nil || u.ID == actor || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		ids = append(ids, u.ID)
	}
	return
}
