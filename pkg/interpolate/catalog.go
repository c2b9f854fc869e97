package interpolate

import "strings"

// Variable describes one placeholder available to rule authors for a given
// trigger event. The catalog is a static lookup table that drives the
// authoring UI; it is descriptive only and carries no runtime contract.
type Variable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var commonVariables = []Variable{
	{Name: "user.name", Description: "Display name of the acting user"},
	{Name: "user.email", Description: "Email address of the acting user"},
	{Name: "workspace.name", Description: "Name of the workspace the event occurred in"},
}

var prefixVariables = map[string][]Variable{
	"task.": {
		{Name: "task.id", Description: "Identifier of the task"},
		{Name: "task.title", Description: "Title of the task"},
		{Name: "task.description", Description: "Description of the task"},
		{Name: "task.status", Description: "Current status of the task"},
		{Name: "task.priority", Description: "Priority of the task"},
	},
	"project.": {
		{Name: "project.id", Description: "Identifier of the project"},
		{Name: "project.name", Description: "Name of the project"},
		{Name: "project.status", Description: "Current status of the project"},
	},
	"report.": {
		{Name: "report.period", Description: "Reporting period the digest covers"},
		{Name: "report.url", Description: "Link to the generated report"},
	},
}

// Catalog returns the known variable names for a trigger event, the common set
// plus any set matching the event's prefix (e.g. every "task.*" event exposes
// the task fields).
func Catalog(eventName string) []Variable {
	variables := make([]Variable, 0, len(commonVariables))
	variables = append(variables, commonVariables...)

	for prefix, set := range prefixVariables {
		if strings.HasPrefix(eventName, prefix) {
			variables = append(variables, set...)
		}
	}

	return variables
}
