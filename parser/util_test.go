package parser

import (
	"context"
	"errors"
	"html"
	"strings"
	"sync"

	"github.com/bakape/forum/common"
)

// Escapes HTML and renders line breaks like the BBCode renderer
type fakeMarkup struct {
	calls int
	err   error
}

func (f *fakeMarkup) ToHTML(s string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>\n"), nil
}

type fakePages struct {
	mu      sync.Mutex
	details map[string]common.RemotePageDetails
	fetched []string
}

func (f *fakePages) PageDetails(_ context.Context, url string,
) common.RemotePageDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	return f.details[url]
}

type fakeUsers struct {
	users []common.User
	err   error
}

func (f fakeUsers) FindByDisplayName(_ context.Context, name string,
) (*common.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.users {
		if strings.EqualFold(f.users[i].DisplayName, name) {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f fakeUsers) FindByLoginContains(_ context.Context, s string,
) (*common.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.users {
		if strings.Contains(strings.ToLower(f.users[i].UserName), strings.ToLower(s)) {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

var errDirectory = errors.New("directory down")

var sampleUsers = fakeUsers{
	users: []common.User{
		{ID: "1", UserName: "alice", DisplayName: "Alice"},
		{ID: "2", UserName: "robert", DisplayName: "Bob"},
		{ID: "3", UserName: "carol_w", DisplayName: "Carol W"},
	},
}

var sampleSmileys = common.Smileys{
	{ID: 1, Code: ":)", Path: "happy.png"},
	{ID: 2, Code: ":))", Path: "happier.png"},
	{ID: 3, Code: ":D", Path: "grin.png"},
	{ID: 4, Code: "<3", Path: "heart.png"},
}
