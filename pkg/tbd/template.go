package tbd

const tbdTemplate = `--- !tapi-tbd
tbd-version:     4
targets:         [ {{ StringsJoin .Targets ", " }} ]
install-name:    '{{.Path}}'
current-version: {{.CurrentVersion}}
compatibility-version: {{.CompatVersion}}
{{- if .Reexports }}
reexported-libraries:
  - targets:         [ {{ StringsJoin .Targets ", " }} ]
    libraries:       [ '{{ StringsJoin .Reexports "', '" }}' ]
{{- end }}
exports:
  - targets:         [ {{ StringsJoin .Targets ", " }} ]
    symbols:         [ {{ StringsJoin .Symbols ",\n                       " }} ]
...
`
