// Package wechatblog converts Markdown articles to WeChat-editor HTML.
//
// # Quick Start
//
// Create a service and convert:
//
//	svc, err := wechatblog.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	html := svc.Convert("# Hello\n\nWorld")
//	os.WriteFile("article.html", []byte(html), 0644)
//
// Convert is total: it never returns an error. Malformed Markdown renders
// through defined fallbacks (unknown syntax becomes literal paragraph text),
// so a conversion always produces a pasteable document.
//
// # Dialect
//
// The input dialect is the fixed subset the editorial templates support:
// h1/h2 headings, blockquotes, dividers, fenced code, images, nested
// ordered/unordered lists, pipe tables, and paragraphs with inline code,
// bold, emphasis, and links. This is not CommonMark; output is assembled
// from HTML template fragments, one per block kind, not from a syntax tree.
//
// # Custom Templates
//
// By default the service uses the embedded fragment set. Point it at a
// directory of fragment files to restyle the output:
//
//	svc, err := wechatblog.New(wechatblog.WithTemplateDir("/path/to/fragments"))
//
// The directory must contain all eleven fragment files; New fails with
// ErrTemplateDirMissing or ErrTemplateMissing otherwise.
//
// # Files
//
// ConvertFile reads a UTF-8 Markdown file and writes the HTML next to it:
//
//	err := svc.ConvertFile("post.md", "post.html")
package wechatblog
