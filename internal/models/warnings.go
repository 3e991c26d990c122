package models

// WarningCode categorizes warnings by subsystem.
// W3xxx = upload validation.
type WarningCode string

const (
	WarnUnknownAssetClass WarningCode = "W3001" // symbol missing from the asset class table; grouped under Unknown
)

// Warning represents a non-fatal issue found while accepting an upload.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
