package forms

import "github.com/JonMunkholm/tableform/internal/core"

func init() {
	registerDistriVersions()
}

// registerDistriVersions registers the table of distribution releases.
// Its stored value is read back by core.Service.DistributionVersions.
func registerDistriVersions() {
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:         core.DistriVersionsKey,
			Label:       "Distribution versions",
			Description: "Releases offered by the portal and their support status.",
			StorageKey:  core.DistriVersionsKey,
			Default:     core.DefaultStoredValue,
		},
		Columns: []core.ColumnDef{
			{Label: "Number", Class: "jstableform-key-number jstableform-type-string jstableform-validate-versionnumber"},
			{Label: "Name", Class: "jstableform-key-name jstableform-type-string jstableform-validate-versionname"},
			{Label: "LTS", Class: "jstableform-key-lts jstableform-type-boolean"},
			{Label: "Active", Class: "jstableform-key-active jstableform-type-boolean"},
			{Label: "Current", Class: "jstableform-key-current jstableform-type-boolean"},
			{Label: "Development", Class: "jstableform-key-dev jstableform-type-boolean"},
			{Label: "", Class: "jstableform-key-_cmdedit"},
			{Label: "", Class: "jstableform-key-_cmddel"},
		},
	})
}
