package markup

import (
	"errors"
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	t.Parallel()

	p := New()
	cases := [...]struct {
		name, in string
		contains []string
	}{
		{"bold", "[b]bold[/b]", []string{"<b>", "bold", "</b>"}},
		{"quote", "[quote]said[/quote]", []string{"<blockquote", "said", "</blockquote>"}},
		{"spoiler", "[spoiler]hidden[/spoiler]", []string{`class="bbc-spoiler"`, "hidden"}},
		{"escapes html", "<script>", []string{"&lt;script&gt;"}},
		{"line breaks", "a\nb", []string{"a<br>\nb"}},
		{"unknown tag", "[foo]bar", []string{"bar"}},
	}

	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			res, err := p.ToHTML(c.in)
			if err != nil {
				t.Fatal(err)
			}
			for _, s := range c.contains {
				if !strings.Contains(res, s) {
					t.Fatalf("%q not found in %q", s, res)
				}
			}
		})
	}
}

func TestToHTMLDeterministic(t *testing.T) {
	t.Parallel()

	const src = "[b]a[/b] [i]b[/i]\n[quote=bob]c[/quote]"
	p := New()
	first, err := p.ToHTML(src)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		res, err := p.ToHTML(src)
		if err != nil {
			t.Fatal(err)
		}
		if res != first {
			t.Fatalf("output differs: %q != %q", res, first)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := [...]struct {
		name, in string
		tag      string
		reason   string
	}{
		{"balanced", "[b]x[/b] [quote][i]y[/i][/quote]", "", ""},
		{"case insensitive", "[B]x[/b]", "", ""},
		{"unclosed", "[b]x", "b", "unclosed"},
		{"unmatched closing", "x[/i]", "i", "unmatched closing"},
		{"crossed", "[b][i]x[/b][/i]", "b", "unmatched closing"},
		{"code literal", "[code][b][/code]", "", ""},
		{"unclosed code", "[code]x", "code", "unclosed"},
		{"unknown tags ignored", "[foo][/bar]", "", ""},
	}

	for i := range cases {
		c := cases[i]
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(c.in)
			if c.tag == "" {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected SyntaxError, got %#v", err)
			}
			if se.Tag != c.tag || se.Reason != c.reason {
				t.Fatalf("unexpected error: %s", se)
			}
		})
	}
}

func TestToHTMLSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := New().ToHTML("[quote]never closed")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected SyntaxError, got %#v", err)
	}
}
