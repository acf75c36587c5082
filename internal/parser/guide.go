package parser

// FormatGuide describes the notation Parse accepts.
const FormatGuide = `Input format

  - Separate entries with a line of three dashes.
  - The first line of an entry is the title and flags: #Title/flag1,flag2
  - Flags pick where the entry is injected:
      c上   before the character definition
      c下   after the character definition
      em上  before the example messages
      em下  after the example messages
      dsN   at depth N as system    (N is a number)
      duN   at depth N as user
      daN   at depth N as assistant
    Unknown flags are ignored; when two flags set the same field the later one wins.
  - The second line holds the primary keywords: *keyword1,keyword2*
  - The third line holds the secondary keywords: **keywordA,keywordB**
    Secondary keywords switch the entry to match-any (OR) logic.
  - Everything after that is the entry content.

Notes
  1. An always-active entry needs no keyword lines; write the content directly.
  2. Do not start content lines with *; a single leading * is stripped.

Example

---
#临江市/c上
- 描述：繁华都市。
---
#临江大学图书馆/c下
*临江大学图书馆,图书馆*
- 位置：高校集群。
---
#理工大科创楼/da5
*科创楼*
**实验室,科研团队**
- 描述：安保严密。
`
