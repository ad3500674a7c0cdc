package allowlists

// Schema is the CUE schema fragment for the allowlists section of a config
// file.
const Schema = `
allowlists?: {
	builtins?: [...string]
	insecure_functions?: [...string]
	disallowed_attributes?: [...string]
	imports?: [...string]
}
`

// ImportBuiltin is the name of the dynamic import builtin. Its first
// argument names a module, checked against the import table.
const ImportBuiltin = "import_module"
