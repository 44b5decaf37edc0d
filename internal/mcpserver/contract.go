package mcpserver

// EnvFormatContract describes the tag-delimited binary archive layout for
// LLM consumers that import archives through the MCP tools.
const EnvFormatContract = `# Perthro Archive Format

Perthro reads an undocumented tag-delimited binary container, usually
carried in files with a ` + "`.env`" + ` extension. There is no length prefix,
no table of contents and no terminator: structure is recovered by
scanning for tag markers.

## Tags

A tag is an uppercase token followed by a forward slash, e.g. ` + "`GUID/`" + `.
Tokens are 2 to 32 characters from ` + "`[A-Z0-9_]`" + `. The value of a tag runs
from the byte after the slash to the start of the next recognized tag
(or the end of the buffer).

Known tags, in recognition order:

` + "```" + `
GUID/ FILENAME/ EXT/ TYPE/ SHA1/ DOCU/ _SIG/ DOCTYPE/
ENV_GUID/ FORM/ IMAGE/ OADI/ SUP/ XSL/ ID/ QU/
` + "```" + `

## Record blocks

` + "`GUID/`" + ` starts a new file record. Metadata tags (` + "`FILENAME/`" + `,
` + "`EXT/`" + `, ` + "`TYPE/`" + `, ` + "`SHA1/`" + `, ` + "`DOCTYPE/`" + `) carry short text values;
only the first line is meaningful. Payload tags (` + "`DOCU/`" + `, ` + "`_SIG/`" + `,
` + "`IMAGE/`" + `, ` + "`OADI/`" + `) carry raw bytes; a record may have several
payload segments and they are concatenated in order on extraction.

Example (binary bytes shown escaped):

` + "```" + `
GUID/ca11ab1eca11ab1eFILENAME/homer-simpson.jpgDOCU/\xFF\xD8\xFF\xE0...
` + "```" + `

## Type inference

When a record declares no type, the payload head is sniffed: JPEG, PNG,
WEBP, XML, ZIP, then TEXT, in that order. Unrecognized payloads keep
the ` + "`Unknown`" + ` label and a ` + "`.bin`" + ` extension.

## Importing via MCP

The ` + "`import_archive`" + ` tool takes base64-encoded bytes in this layout.
Bytes that contain no known tags still produce an archive with zero
records and a diagnostic, so malformed input is never rejected
outright.
`
