// Package templates loads the fixed WeChat fragment set and performs
// {placeholder} substitution. Fragments are plain HTML files identified by
// their Chinese file names; the set is loaded eagerly so a missing fragment
// fails at startup, before any parsing begins.
package templates

import (
	"fmt"
	"sort"
	"strings"
)

// Fragment file names (without the .html extension). These are fixed by the
// publishing workflow and match the files editors maintain by hand.
const (
	NameRoot         = "正文区块"
	NameText         = "文本"
	NameHeading1     = "一级标题"
	NameHeading2     = "二级标题"
	NameQuote        = "引用"
	NameImage        = "图片"
	NameDivider      = "分割线"
	NameBlank        = "空行"
	NameBannerTop    = "关注我们_top"
	NameBannerBottom = "关注我们_bottom"
	NameTerminator   = "结束符"
)

// AllNames lists every fragment a complete set must provide.
var AllNames = []string{
	NameRoot,
	NameText,
	NameHeading1,
	NameHeading2,
	NameQuote,
	NameImage,
	NameDivider,
	NameBlank,
	NameBannerTop,
	NameBannerBottom,
	NameTerminator,
}

// Template is one named HTML fragment with zero or more {name} placeholders.
// Immutable once loaded.
type Template struct {
	Name string
	Text string
}

// Render replaces every occurrence of {key} for each substitution entry.
// Keys are applied in sorted order for deterministic output. Placeholders
// with no matching entry are left as literal text; templates may carry
// optional fields the caller does not fill.
func (t Template) Render(subs map[string]string) string {
	out := t.Text
	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{"+k+"}", subs[k])
	}
	return out
}

// Set holds the complete fragment set for one conversion run.
type Set struct {
	Root         Template
	Text         Template
	Heading1     Template
	Heading2     Template
	Quote        Template
	Image        Template
	Divider      Template
	Blank        Template
	BannerTop    Template
	BannerBottom Template
	Terminator   Template
}

// LoadSet loads all fragments through the given loader. A missing or
// unreadable fragment fails the whole load; there are no partial sets.
func LoadSet(l Loader) (*Set, error) {
	set := &Set{}
	targets := map[string]*Template{
		NameRoot:         &set.Root,
		NameText:         &set.Text,
		NameHeading1:     &set.Heading1,
		NameHeading2:     &set.Heading2,
		NameQuote:        &set.Quote,
		NameImage:        &set.Image,
		NameDivider:      &set.Divider,
		NameBlank:        &set.Blank,
		NameBannerTop:    &set.BannerTop,
		NameBannerBottom: &set.BannerBottom,
		NameTerminator:   &set.Terminator,
	}
	for _, name := range AllNames {
		text, err := l.Load(name)
		if err != nil {
			return nil, err
		}
		*targets[name] = Template{Name: name, Text: text}
	}
	return set, nil
}

// ValidateName checks that a fragment name is safe for use as a file name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTemplateName)
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidTemplateName, name)
	}
	return nil
}
