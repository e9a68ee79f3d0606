package model

import "time"

// Module is a feature area that can be toggled on a workspace. Code is the
// canonical spelling; historical aliases map onto it via ModuleAlias rows.
type Module struct {
	Code        string
	DisplayName string
}

// ModuleAlias maps one historical code to its canonical module. The alias
// table is versioned by EffectiveAt so renames stay auditable; resolution
// always uses the latest row per alias.
type ModuleAlias struct {
	Alias       string
	Canonical   string
	EffectiveAt time.Time
}
