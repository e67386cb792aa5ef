// Package assemble injects page metadata and content into the shared HTML shell.
//
// The shell is tokenized once into fixed segments around three slots: the title
// text, a managed head block placed immediately before </head>, and the inner
// content of the root container. Managed tags already present in the head (and
// any earlier managed block) are dropped while parsing, so filling a shell that
// was itself produced by Fill yields byte-identical output.
package assemble

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/seo"
)

const (
	DefaultRootID = "root"

	blockStart = "pagegen:head"
	blockEnd   = "/pagegen:head"
)

// MissingAnchorError reports a shell anchor that is absent or duplicated.
type MissingAnchorError struct {
	Anchor string
	Count  int
}

func (e *MissingAnchorError) Error() string {
	return fmt.Sprintf("shell anchor %s found %d times, want exactly 1", e.Anchor, e.Count)
}

// Options configures shell parsing.
type Options struct {
	// RootID is the id of the element whose inner content is replaced.
	RootID string
}

// Shell is a parsed base document. It is immutable and safe for concurrent use.
type Shell struct {
	beforeTitle string
	afterTitle  string // up to, not including, </head>
	beforeRoot  string // from </head> through the root start tag
	afterRoot   string // from the root end tag to EOF
}

type scanner struct {
	rootID string

	segments []string
	cur      strings.Builder

	inHead      bool
	inTitle     bool
	inBlock     bool
	inLDScript  bool
	inRoot      bool
	rootTag     string
	rootDepth   int
	rootClosed  bool
	titles      int
	headCloses  int
	roots       int
	rootInHead  bool
	unterminate bool
}

// ParseShell tokenizes base into slots and validates its anchors.
func ParseShell(base string, opts Options) (*Shell, error) {
	if opts.RootID == "" {
		opts.RootID = DefaultRootID
	}
	s := &scanner{rootID: opts.RootID, inHead: true}

	z := html.NewTokenizer(strings.NewReader(base))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, errors.WrapError(err, errors.CategoryAssembly, "tokenize shell").Build()
			}
			break
		}
		raw := string(z.Raw())
		s.token(tt, raw, z.Token())
	}
	s.cut()

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &Shell{
		beforeTitle: s.segments[0],
		afterTitle:  s.segments[1],
		beforeRoot:  s.segments[2],
		afterRoot:   s.segments[3],
	}, nil
}

func (s *scanner) cut() {
	s.segments = append(s.segments, s.cur.String())
	s.cur.Reset()
}

func (s *scanner) token(tt html.TokenType, raw string, tok html.Token) {
	if s.inHead {
		s.headToken(tt, raw, tok)
		return
	}
	s.bodyToken(tt, raw, tok)
}

func (s *scanner) headToken(tt html.TokenType, raw string, tok html.Token) {
	switch {
	case s.inBlock:
		if tt == html.CommentToken && strings.TrimSpace(tok.Data) == blockEnd {
			s.inBlock = false
		}
		if tt == html.EndTagToken && tok.Data == "head" {
			s.unterminate = true
			s.inBlock = false
			s.headToken(tt, raw, tok)
		}
		return
	case s.inLDScript:
		if tt == html.EndTagToken && tok.Data == "script" {
			s.inLDScript = false
		}
		return
	case s.inTitle:
		if tt == html.EndTagToken && tok.Data == "title" {
			s.inTitle = false
			s.cur.WriteString(raw)
		}
		return
	}

	switch tt {
	case html.CommentToken:
		if strings.TrimSpace(tok.Data) == blockStart {
			s.inBlock = true
			return
		}
	case html.StartTagToken, html.SelfClosingTagToken:
		if tok.Data == "title" && tt == html.StartTagToken {
			s.titles++
			s.cur.WriteString(raw)
			if s.titles == 1 {
				s.cut()
				s.inTitle = true
			}
			return
		}
		if isManaged(tok) {
			if tok.Data == "script" && tt == html.StartTagToken {
				s.inLDScript = true
			}
			return
		}
		if attr(tok, "id") == s.rootID {
			s.roots++
			s.rootInHead = true
		}
	case html.EndTagToken:
		if tok.Data == "head" {
			s.headCloses++
			s.cut()
			s.inHead = false
			s.cur.WriteString(raw)
			return
		}
	}
	s.cur.WriteString(raw)
}

func (s *scanner) bodyToken(tt html.TokenType, raw string, tok html.Token) {
	if tt == html.EndTagToken && tok.Data == "head" {
		s.headCloses++
	}
	if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
		if attr(tok, "id") == s.rootID {
			s.roots++
			if s.roots == 1 && tt == html.StartTagToken {
				s.cur.WriteString(raw)
				s.cut()
				s.inRoot = true
				s.rootTag = tok.Data
				s.rootDepth = 1
				return
			}
		}
	}
	if !s.inRoot {
		s.cur.WriteString(raw)
		return
	}
	switch {
	case tt == html.StartTagToken && tok.Data == s.rootTag:
		s.rootDepth++
	case tt == html.EndTagToken && tok.Data == s.rootTag:
		s.rootDepth--
		if s.rootDepth == 0 {
			s.inRoot = false
			s.rootClosed = true
			s.cur.WriteString(raw)
		}
	}
}

func (s *scanner) validate() error {
	if s.titles != 1 {
		return &MissingAnchorError{Anchor: "<title>", Count: s.titles}
	}
	if s.headCloses != 1 {
		return &MissingAnchorError{Anchor: "</head>", Count: s.headCloses}
	}
	if s.roots != 1 {
		return &MissingAnchorError{Anchor: "#" + s.rootID, Count: s.roots}
	}
	if s.rootInHead || !s.rootClosed {
		return &MissingAnchorError{Anchor: "#" + s.rootID + " in body", Count: 0}
	}
	if s.unterminate {
		return errors.AssemblyError("unterminated managed head block").Build()
	}
	if len(s.segments) != 4 {
		return errors.AssemblyError("unexpected shell layout").WithContext("segments", len(s.segments)).Build()
	}
	return nil
}

// isManaged reports whether tok is a head tag owned by the managed block.
func isManaged(tok html.Token) bool {
	switch tok.Data {
	case "meta":
		name := strings.ToLower(attr(tok, "name"))
		property := strings.ToLower(attr(tok, "property"))
		switch {
		case name == "description", name == "keywords", name == "robots":
			return true
		case strings.HasPrefix(name, "twitter:"), strings.HasPrefix(property, "og:"):
			return true
		}
	case "link":
		return strings.EqualFold(attr(tok, "rel"), "canonical")
	case "script":
		return strings.EqualFold(attr(tok, "type"), "application/ld+json")
	}
	return false
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Fill returns the final document for meta.
func (sh *Shell) Fill(meta seo.PageMetadata) (string, error) {
	if strings.TrimSpace(meta.Title) == "" {
		return "", errors.AssemblyError("page title is empty").Build()
	}
	if meta.CanonicalURL == "" {
		return "", errors.AssemblyError("canonical URL is empty").WithContext("title", meta.Title).Build()
	}
	block, err := headBlock(meta)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(sh.beforeTitle) + len(sh.afterTitle) + len(sh.beforeRoot) + len(sh.afterRoot) + len(block) + len(meta.Content) + 256)
	b.WriteString(sh.beforeTitle)
	b.WriteString(html.EscapeString(meta.Title))
	b.WriteString(sh.afterTitle)
	b.WriteString(block)
	b.WriteString(sh.beforeRoot)
	b.WriteString("<header><h1>")
	b.WriteString(html.EscapeString(meta.H1))
	b.WriteString("</h1></header>\n")
	b.WriteString(meta.Content)
	b.WriteString(sh.afterRoot)
	return b.String(), nil
}

// Assemble parses base and fills it with meta.
func Assemble(base string, meta seo.PageMetadata) (string, error) {
	sh, err := ParseShell(base, Options{})
	if err != nil {
		return "", err
	}
	return sh.Fill(meta)
}

func headBlock(meta seo.PageMetadata) (string, error) {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	nameTag := func(name, value string) {
		add(`<meta name="%s" content="%s">`, name, html.EscapeString(value))
	}
	propertyTag := func(property, value string) {
		add(`<meta property="%s" content="%s">`, property, html.EscapeString(value))
	}

	nameTag("description", meta.MetaDescription)
	if len(meta.Keywords) > 0 {
		nameTag("keywords", strings.Join(meta.Keywords, ", "))
	}
	if meta.Robots != "" {
		nameTag("robots", meta.Robots)
	}
	add(`<link rel="canonical" href="%s">`, html.EscapeString(meta.CanonicalURL))

	ogType := meta.OGType
	if ogType == "" {
		ogType = "website"
	}
	propertyTag("og:type", ogType)
	propertyTag("og:title", meta.Title)
	propertyTag("og:description", meta.MetaDescription)
	propertyTag("og:url", meta.CanonicalURL)
	if meta.SiteName != "" {
		propertyTag("og:site_name", meta.SiteName)
	}
	if meta.Image != "" {
		propertyTag("og:image", meta.Image)
	}

	card := "summary"
	if meta.Image != "" {
		card = "summary_large_image"
	}
	nameTag("twitter:card", card)
	nameTag("twitter:title", meta.Title)
	nameTag("twitter:description", meta.MetaDescription)
	if meta.Image != "" {
		nameTag("twitter:image", meta.Image)
	}
	if meta.TwitterSite != "" {
		nameTag("twitter:site", meta.TwitterSite)
	}

	if meta.Schema != nil {
		data, err := json.Marshal(meta.Schema)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryAssembly, "marshal JSON-LD schema").
				WithContext("canonical", meta.CanonicalURL).
				Build()
		}
		add(`<script type="application/ld+json">%s</script>`, data)
	}

	return "<!-- " + blockStart + " -->\n" + strings.Join(lines, "\n") + "\n<!-- " + blockEnd + " -->", nil
}
