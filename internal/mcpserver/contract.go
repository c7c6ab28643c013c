package mcpserver

// DocumentFormatContract describes the Markdown format of documents added
// through the content directory.
const DocumentFormatContract = `# Virtual TA Document Format

Markdown files placed in the content directory are added to the course
corpus after the base documents. Each file becomes one document.

## Structure

` + "```" + `markdown
---
title: Week 3 - Data Visualization   # OPTIONAL - defaults to the first "# " heading
url: https://tds.s-anand.net/#/2025-01/visualization   # OPTIONAL - the document identity
type: course_material               # OPTIONAL - course_material (default) or discourse_post
section: Week 3                     # OPTIONAL - course materials
date: 2025-01-15                    # OPTIONAL - discourse posts
---

Body text in Markdown. This is what questions are scored against.
` + "```" + `

## Rules

1. **url is the identity.** A document whose url is already in the corpus is
   ignored; the first occurrence wins. Without a url the file path is used
   (` + "`" + `file://week3/visualization.md` + "`" + `).
2. **type** must be ` + "`" + `course_material` + "`" + ` or ` + "`" + `discourse_post` + "`" + `. Any other
   value skips the file and logs a warning.
3. **section / date**: set ` + "`" + `section` + "`" + ` for course material and ` + "`" + `date` + "`" + ` for
   forum posts. When both are present ` + "`" + `section` + "`" + ` wins.
4. **Body** is trimmed. Keep one topic per file; the first 200 characters are
   used as the answer snippet, the first 50 as link text.
5. **File names** end with ` + "`" + `.md` + "`" + `. Hidden files and directories are skipped.
6. **Encoding** is UTF-8.

## Example

` + "```" + `markdown
---
title: Docker vs Podman
url: https://discourse.onlinedegree.iitm.ac.in/t/docker-podman-discussion/155943
type: discourse_post
date: 2025-01-18
---

Podman is recommended for the course; Docker is acceptable.
` + "```" + `
`
