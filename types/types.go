package types

// SysVar specifies the system variables.
type SysVar string

// SysVar enums.
const (
	SysVarSchemaVersion SysVar = "schema_version"
)
