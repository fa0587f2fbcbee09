package mcpserver

// PageFormatContract describes the Markdown page format the wiki engine
// parses, indexes and renders.
const PageFormatContract = `# Wiki Page Format

Every page is a UTF-8 Markdown file ending in ` + "`.md`" + ` somewhere inside the wiki
folder. Files under ` + "`output/`" + ` and any dot-directory (such as ` + "`.wiki/`" + `) are not pages.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL; defaults to the first "# " heading
tags:                               # OPTIONAL; YAML list or comma-separated string
  - tag-one
  - tag-two
---

# Human-readable title

Body text in standard Markdown. Inline #tags are indexed too.

Link to other pages with [[Page Name]] (no .md extension needed).
Use [[Page Name|label]] to show different link text.
` + "```" + `

## Rules

1. Frontmatter is optional. When present the ` + "`---`" + ` fences come first. Invalid YAML
   is kept as part of the body.
2. The page title is the frontmatter ` + "`title`" + `, else the first H1. Untitled pages are shown by file name.
3. Wikilink targets resolve relative to the wiki root: ` + "`[[notes/ideas]]`" + ` is
   ` + "`notes/ideas.md`" + `.
4. ` + "`Home.md`" + ` is the landing page and the first section of a static export.
5. Paths use forward slashes.

## Files

- Upload attachments with the ` + "`upload_file`" + ` tool. It returns a ` + "`markdown`" + ` snippet.
- Attachments live flat in ` + "`files/`" + ` and are referenced as ` + "`/files/<name>`" + `.
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.

## Example

` + "```" + `markdown
---
title: Weekly standup
tags: [meetings]
---

# Weekly standup

![Whiteboard](/files/standup.jpg)

- Review [[Getting Started]]
- Update [[projects/roadmap|the roadmap]]
` + "```" + `
`
