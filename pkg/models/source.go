package models

// SourceType identifies where the repository under audit comes from.
type SourceType string

const (
	SourceTypeGit   SourceType = "git"
	SourceTypeLocal SourceType = "local"
)

// RegionMode controls whether the whole repository or a selected region is
// analyzed.
type RegionMode string

const (
	RegionModeFull     RegionMode = "full"
	RegionModeSelected RegionMode = "selected"
)

// SourceSelection describes the repository the run operates on. It is
// mutated freely while no job is active and frozen once a run is submitted.
type SourceSelection struct {
	Type       SourceType `json:"type"                  validate:"required,oneof=git local"`
	URL        string     `json:"url,omitempty"         validate:"required_if=Type git,omitempty,url"`
	Path       string     `json:"path,omitempty"        validate:"required_if=Type local"`
	Branch     string     `json:"branch,omitempty"`
	RegionMode RegionMode `json:"region_mode,omitempty" validate:"omitempty,oneof=full selected"`
}

// Location returns the URL for git sources and the path for local sources.
func (s SourceSelection) Location() string {
	if s.Type == SourceTypeLocal {
		return s.Path
	}

	return s.URL
}

// Empty reports whether no source has been selected yet.
func (s SourceSelection) Empty() bool {
	return s.Type == "" && s.URL == "" && s.Path == ""
}
