package audit

import "strings"

// ActionResource holds action and resource derived from a socket procedure name.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseProcedure returns action and resource for a procedure name,
// so "user.reset.send" audits as action "reset-send" on resource "user".
// Names without a dot audit as the whole name on resource "unknown".
func ParseProcedure(name string) ActionResource {
	dot := strings.Index(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		action := strings.ToLower(name)
		if action == "" {
			action = "unknown"
		}
		return ActionResource{Action: action, Resource: "unknown"}
	}
	resource := strings.ToLower(name[:dot])
	action := strings.ToLower(strings.ReplaceAll(name[dot+1:], ".", "-"))
	return ActionResource{Action: action, Resource: resource}
}
